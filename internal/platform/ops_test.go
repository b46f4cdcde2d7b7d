package platform_test

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/aretw0/galaxies/internal/platform"
	"github.com/aretw0/galaxies/pkg/core"
)

// fakeBuilder yields one example per key, in order.
func fakeBuilder(name string, keys ...string) *core.Builder {
	schema := core.NewDict(core.F("id", core.Text{}))
	return &core.Builder{
		Name:    name,
		Version: "1.0.0",
		Schema:  schema,
		Generator: core.GeneratorFunc(func(ctx context.Context, manualDir string) iter.Seq2[core.Example, error] {
			files := make(core.Files, 0, len(keys))
			for _, k := range keys {
				files = append(files, manualDir+"/"+k+".jpg")
			}
			join := &core.FileJoin{
				Schema: schema,
				Key:    core.StemKey,
				Fields: func(key, _ string, _ core.Row) (map[string]any, error) {
					return map[string]any{"id": key}, nil
				},
			}
			return join.Generate(ctx, files)
		}),
	}
}

func newService(t *testing.T, opts ...platform.Option) *platform.Service {
	t.Helper()
	base := []platform.Option{
		platform.WithManualDir(t.TempDir()),
		platform.WithBuilders(fakeBuilder("unique", "a", "b"), fakeBuilder("repeated", "a", "a", "b")),
	}
	svc, err := platform.New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

func keys(t *testing.T, seq iter.Seq2[core.Example, error]) ([]string, error) {
	t.Helper()
	var out []string
	for ex, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, ex.Key)
	}
	return out, nil
}

func TestServiceGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("Default Policy Rejects Duplicates", func(t *testing.T) {
		svc := newService(t)
		_, err := keys(t, svc.Generate(ctx, "repeated"))
		if !errors.Is(err, core.ErrDuplicateKey) {
			t.Errorf("expected ErrDuplicateKey, got %v", err)
		}
	})

	t.Run("First Policy", func(t *testing.T) {
		svc := newService(t, platform.WithDuplicatePolicy(core.DuplicateFirst))
		got, err := keys(t, svc.Generate(ctx, "repeated"))
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 examples, got %v", got)
		}
	})

	t.Run("Unknown Dataset", func(t *testing.T) {
		svc := newService(t)
		_, err := keys(t, svc.Generate(ctx, "nope"))
		if !errors.Is(err, core.ErrUnknownDataset) {
			t.Errorf("expected ErrUnknownDataset, got %v", err)
		}
	})
}

func TestServiceCount(t *testing.T) {
	svc := newService(t, platform.WithDuplicatePolicy(core.DuplicateKeep))

	stats, err := svc.Count(context.Background(), "repeated")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Yielded != 3 {
		t.Errorf("Yielded = %d, want 3", stats.Yielded)
	}
}

func TestServiceCountPartial(t *testing.T) {
	svc := newService(t)

	stats, err := svc.Count(context.Background(), "repeated")
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if stats.Yielded != 2 {
		t.Errorf("Yielded = %d, want the counters of the interrupted pass", stats.Yielded)
	}
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	_, err := platform.New(platform.WithManualDir(t.TempDir()), platform.WithDuplicatePolicy("sometimes"))
	if err == nil {
		t.Error("expected error for unknown policy")
	}
}
