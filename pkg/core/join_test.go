package core_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/galaxies/pkg/core"
)

// fileSet fakes a directory listing: Locate succeeds for names it contains.
type fileSet map[string]bool

func (fs fileSet) locator(format string) core.Locator {
	return core.LocatorFunc(func(id string) (string, bool) {
		name := fmt.Sprintf(format, id)
		return "/images/" + name, fs[name]
	})
}

func orientationJoin(files fileSet, stats *core.Stats) *core.RowJoin {
	return &core.RowJoin{
		Schema: core.NewDict(
			core.F("id", core.Scalar{DType: core.Int64}),
			core.F("size", core.Scalar{DType: core.Float32}),
			core.F("box", core.Image{}),
			core.F("edge", core.Image{}),
			core.F("face", core.Image{}),
		),
		KeyColumn: "id",
		Roles: []core.Role{
			{Field: "box", Locator: files.locator("galrand_%s.png")},
			{Field: "edge", Locator: files.locator("galedge_%s.png")},
			{Field: "face", Locator: files.locator("galface_%s.png")},
		},
		Fields: func(key string, row core.Row) (map[string]any, error) {
			return row.Pick([]string{"id", "size"})
		},
		Stats: stats,
	}
}

func row(line int, kv ...string) core.Row {
	values := make(map[string]string)
	for i := 0; i+1 < len(kv); i += 2 {
		values[kv[i]] = kv[i+1]
	}
	return core.RowOf(line, values)
}

func TestRowJoin(t *testing.T) {
	ctx := context.Background()

	t.Run("Skips Row Missing A Required Role", func(t *testing.T) {
		files := fileSet{"galrand_42.png": true}
		stats := &core.Stats{}
		join := orientationJoin(files, stats)

		got, err := core.Collect(join.Generate(ctx, core.Rows{row(1, "id", "42", "size", "1.5")}), core.DuplicateKeep)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, core.Stats{Seen: 1, Skipped: 1}, *stats)
	})

	t.Run("Yields Row With Every Role", func(t *testing.T) {
		files := fileSet{"galrand_42.png": true, "galedge_42.png": true, "galface_42.png": true}
		join := orientationJoin(files, nil)

		rows := core.Rows{
			row(1, "id", "42", "size", "1.5"),
			row(2, "id", "43", "size", "2.0"),
		}
		got, err := core.Collect(join.Generate(ctx, rows), core.DuplicateError)
		require.NoError(t, err)
		require.Len(t, got, 1)

		ex := got[0]
		assert.Equal(t, "42", ex.Key)
		assert.Equal(t, int64(42), ex.Features["id"])
		assert.Equal(t, float32(1.5), ex.Features["size"])
		assert.Equal(t, core.FileRef{Path: "/images/galface_42.png"}, ex.Features["face"])
	})

	t.Run("Optional Role Is Omitted", func(t *testing.T) {
		files := fileSet{"galrand_1.png": true, "galedge_1.png": true}
		join := orientationJoin(files, nil)
		join.Roles[2].Optional = true
		join.Schema.Fields[4].Optional = true

		got, err := core.Collect(join.Generate(ctx, core.Rows{row(1, "id", "1", "size", "1")}), core.DuplicateError)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.NotContains(t, got[0].Features, "face")
		assert.Contains(t, got[0].Features, "edge")
	})

	t.Run("Duplicate Identifiers Are Yielded Twice", func(t *testing.T) {
		files := fileSet{"galrand_5.png": true, "galedge_5.png": true, "galface_5.png": true}
		join := orientationJoin(files, nil)

		rows := core.Rows{row(1, "id", "5", "size", "1"), row(2, "id", "5", "size", "2")}
		got, err := core.Collect(join.Generate(ctx, rows), core.DuplicateKeep)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, got[0].Key, got[1].Key)
	})

	t.Run("Filter Drops Rows Before Lookup", func(t *testing.T) {
		files := fileSet{"galrand_9.png": true, "galedge_9.png": true, "galface_9.png": true}
		stats := &core.Stats{}
		join := orientationJoin(files, stats)
		join.Filter = func(r core.Row) (bool, error) {
			v, err := r.Get("size")
			return v != "0", err
		}

		got, err := core.Collect(join.Generate(ctx, core.Rows{row(1, "id", "9", "size", "0")}), core.DuplicateKeep)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, 1, stats.Filtered)
	})

	t.Run("Malformed Value Is Fatal", func(t *testing.T) {
		files := fileSet{"galrand_3.png": true, "galedge_3.png": true, "galface_3.png": true}
		join := orientationJoin(files, nil)

		_, err := core.Collect(join.Generate(ctx, core.Rows{row(1, "id", "3", "size", "huge")}), core.DuplicateKeep)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrMalformedValue)

		var fe *core.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "3", fe.Key)
		assert.Equal(t, "size", fe.Field)
	})

	t.Run("Empty Value Survives Coercion", func(t *testing.T) {
		files := fileSet{"galrand_7.png": true, "galedge_7.png": true, "galface_7.png": true}
		join := orientationJoin(files, nil)

		got, err := core.Collect(join.Generate(ctx, core.Rows{row(1, "id", "7", "size", "")}), core.DuplicateKeep)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.NotEqual(t, got[0].Features["size"], got[0].Features["size"], "NaN is never equal to itself")
	})

	t.Run("Missing Key Column Is Fatal", func(t *testing.T) {
		join := orientationJoin(fileSet{}, nil)
		_, err := core.Collect(join.Generate(ctx, core.Rows{row(1, "size", "1")}), core.DuplicateKeep)
		assert.ErrorIs(t, err, core.ErrMissingColumn)
	})

	t.Run("Stops When Consumer Stops", func(t *testing.T) {
		files := fileSet{}
		for _, id := range []string{"1", "2", "3"} {
			files["galrand_"+id+".png"] = true
			files["galedge_"+id+".png"] = true
			files["galface_"+id+".png"] = true
		}
		stats := &core.Stats{}
		join := orientationJoin(files, stats)

		rows := core.Rows{row(1, "id", "1", "size", "1"), row(2, "id", "2", "size", "1"), row(3, "id", "3", "size", "1")}
		for ex, err := range join.Generate(ctx, rows) {
			require.NoError(t, err)
			assert.Equal(t, "1", ex.Key)
			break
		}
		assert.Equal(t, 1, stats.Seen)
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := core.Collect(orientationJoin(fileSet{}, nil).Generate(cctx, core.Rows{row(1, "id", "1")}), core.DuplicateKeep)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFileJoin(t *testing.T) {
	ctx := context.Background()
	schema := core.NewDict(
		core.F("id", core.Text{}),
		core.F("image", core.Image{}),
		core.F("ra", core.Scalar{DType: core.Float64}),
	)

	index := map[string][]core.Row{
		"100": {row(1, "ra", "10.5")},
		"200": {row(2, "ra", "1"), row(3, "ra", "2")},
	}

	join := &core.FileJoin{
		Schema: schema,
		Key:    core.StemKey,
		Index:  func(key string) []core.Row { return index[key] },
		Fields: func(key, path string, r core.Row) (map[string]any, error) {
			ra, err := r.Get("ra")
			if err != nil {
				return nil, err
			}
			return map[string]any{"id": key, "image": path, "ra": ra}, nil
		},
	}

	files := core.Files{"/img/100.jpg", "/img/200.jpg", "/img/300.jpg"}
	stats := &core.Stats{}
	got, err := core.Collect(join.Generate(core.WithStats(ctx, stats), files), core.DuplicateKeep)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "100", got[0].Key)
	assert.Equal(t, 10.5, got[0].Features["ra"])
	assert.Equal(t, "200", got[1].Key)
	assert.Equal(t, "200", got[2].Key)
	assert.Equal(t, core.Stats{Seen: 3, Yielded: 3, Skipped: 1}, *stats)

	_, err = core.Collect(join.Generate(ctx, files), core.DuplicateError)
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestFileJoinWithoutIndex(t *testing.T) {
	join := &core.FileJoin{
		Schema: core.NewDict(core.F("mangaid", core.Text{}), core.F("image", core.Image{})),
		Key:    core.SegmentKey("_", 1),
		Fields: func(key, path string, _ core.Row) (map[string]any, error) {
			return map[string]any{"mangaid": key, "image": path}, nil
		},
	}

	files := core.Files{"/gz3d/gz3d_1-1001_127_5679.fits.gz", "/gz3d/broken.fits.gz"}
	got, err := core.Collect(join.Generate(context.Background(), files), core.DuplicateError)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1-1001", got[0].Key)
	assert.Equal(t, "1-1001", got[0].Features["mangaid"])
}

func TestKeyFuncs(t *testing.T) {
	key, ok := core.StemKey("/a/b/588017.jpg")
	assert.True(t, ok)
	assert.Equal(t, "588017", key)

	key, ok = core.StemKey("/a/b/gz3d_1-1001_127.fits.gz")
	assert.True(t, ok)
	assert.Equal(t, "gz3d_1-1001_127", key)

	_, ok = core.StemKey("/a/.hidden")
	assert.False(t, ok)

	key, ok = core.NumericStemKey("/img/1237.jpg")
	assert.True(t, ok)
	assert.Equal(t, "1237", key)

	_, ok = core.NumericStemKey("/img/thumb_1237.jpg")
	assert.False(t, ok)

	_, ok = core.SegmentKey("_", 3)("a_b")
	assert.False(t, ok)
}
