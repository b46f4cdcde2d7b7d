package eagle_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/galaxies/pkg/core"
	"github.com/aretw0/galaxies/pkg/datasets/eagle"
)

const header = "GalaxyID,Image_ID,SnapNum,R_halfmass30,R_halfmass100,R_halfmass30_projected,R_halfmass100_projected"

func writeSnapshot(t *testing.T, root, snap string, rows []string, images ...string) {
	t.Helper()
	dir := filepath.Join(root, snap)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0755))
	data := header + "\n" + strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte(data), 0644))
	for _, img := range images {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "images", img), nil, 0644))
	}
}

func allOrientations(id string) []string {
	return []string{"galrand_" + id + ".png", "galedge_" + id + ".png", "galface_" + id + ".png"}
}

func TestGenerate(t *testing.T) {
	manual := t.TempDir()
	sim := filepath.Join(manual, "RefL0025N0752")

	images := append(allOrientations("7"), allOrientations("9")...)
	images = append(images, "galrand_42.png")
	writeSnapshot(t, sim, "snap_27", []string{
		"42,1,27,1.5,1,1,1",
		"7,2,27,,2,3,4",
		"9,-1,27,1,1,1,1",
	}, images...)
	writeSnapshot(t, sim, "snap_26", []string{"100,5,26,1,2,3,4"}, allOrientations("100")...)
	require.NoError(t, os.WriteFile(filepath.Join(sim, "README"), nil, 0644))

	b := eagle.New("RefL0025N0752", nil)
	require.NoError(t, b.Schema.Validate())

	got, err := core.Collect(b.Generate(context.Background(), manual), core.DuplicateError)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byKey := map[string]core.Example{}
	for _, ex := range got {
		byKey[ex.Key] = ex
	}
	require.Contains(t, byKey, "7")
	require.Contains(t, byKey, "100")
	assert.NotContains(t, byKey, "42", "rows missing an orientation are skipped")
	assert.NotContains(t, byKey, "9", "rows without an image are dropped")

	ex := byKey["7"]
	assert.Equal(t, int64(7), ex.Features["GalaxyID"])
	assert.Equal(t, int64(27), ex.Features["Snapshot"])
	assert.Equal(t, core.FileRef{Path: filepath.Join(sim, "snap_27", "images", "galedge_7.png")}, ex.Features["Image_edge"])

	sizes := ex.Features["Sizes"].(map[string]any)
	assert.True(t, math.IsNaN(float64(sizes["R_halfmass30"].(float32))))
	assert.Equal(t, float32(4), sizes["R_halfmass100_projected"])

	assert.Equal(t, core.Stats{Seen: 4, Yielded: 2, Skipped: 1, Filtered: 1}, b.LastStats())
}

func TestGenerateErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Simulation", func(t *testing.T) {
		_, err := core.Collect(eagle.New("RefL0100N1504", nil).Generate(ctx, t.TempDir()), core.DuplicateError)
		assert.ErrorIs(t, err, core.ErrNoManualData)
	})

	t.Run("Malformed Snapshot", func(t *testing.T) {
		manual := t.TempDir()
		writeSnapshot(t, filepath.Join(manual, "RefL0025N0376"), "snap_12", []string{"1,1,twelve,1,1,1,1"}, allOrientations("1")...)

		_, err := core.Collect(eagle.New("RefL0025N0376", nil).Generate(ctx, manual), core.DuplicateError)
		assert.ErrorIs(t, err, core.ErrMalformedValue)
	})

	t.Run("Empty Image ID", func(t *testing.T) {
		manual := t.TempDir()
		writeSnapshot(t, filepath.Join(manual, "RefL0025N0376"), "snap_12", []string{"1,,12,1,1,1,1"}, allOrientations("1")...)

		_, err := core.Collect(eagle.New("RefL0025N0376", nil).Generate(ctx, manual), core.DuplicateError)
		assert.ErrorIs(t, err, core.ErrMalformedValue)
	})
}

func TestBuilders(t *testing.T) {
	builders := eagle.Builders(nil)
	require.Len(t, builders, len(eagle.Simulations))
	assert.Equal(t, "eagle/RefL0100N1504", builders[0].FullName())
	assert.Contains(t, builders[0].Citation, "2015MNRAS.446..521S")

	info := builders[0].Info()
	assert.Equal(t, "1.0.0", info.Version)
	names := make([]string, 0, len(info.Features.Fields))
	for _, f := range info.Features.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"GalaxyID", "Image_box", "Image_edge", "Image_face", "Snapshot", "Sizes"}, names)
}
