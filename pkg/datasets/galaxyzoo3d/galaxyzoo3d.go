// Package galaxyzoo3d builds the Galaxy Zoo: 3D spaxel masks of MaNGA targets.
//
// Every example points at one FITS file: HDU 0 is the image, HDUs 1 to 4
// are the center, stars, spiral and bar masks.
package galaxyzoo3d

import (
	"context"
	_ "embed"
	"iter"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/galaxies/pkg/adapters/fs"
	"github.com/aretw0/galaxies/pkg/core"
)

const (
	Name = "galaxy_zoo_3d"
	// Dir is the folder under the manual directory holding the FITS files.
	Dir = "galaxyzoo3d"
)

//go:embed citation.bib
var citation string

const description = `Dataset containing crowd sourced spatial pixel (spaxel) maps identifying galaxy
centres, foreground stars, galactic bars and spiral arms in all galaxies in the
target file for the MaNGA survey. Data comes from the "Galaxy Zoo: 3D" project
(Masters et al. 2021).`

const instructions = `GalaxyZoo3d has a dedicated command to download data.

Usage:

    galaxies galaxyzoo3d download`

// Masks lists the mask fields in HDU order, starting at HDU 1.
var Masks = []string{"center_mask", "stars_mask", "spiral_mask", "bar_mask"}

func mask() core.Image {
	return core.Image{Shape: [3]int{0, 0, 1}, DType: core.Float32}
}

// Schema is the feature set of every example.
var Schema = core.NewDict(
	core.F("mangaid", core.Text{}),
	core.F("image", core.Image{Shape: [3]int{0, 0, 3}}),
	core.F(Masks[0], mask()),
	core.F(Masks[1], mask()),
	core.F(Masks[2], mask()),
	core.F(Masks[3], mask()),
)

// New returns the galaxy_zoo_3d builder. Files are named
// "gz3d_<mangaid>_<ifu>_<...>.fits.gz"; the key is the manga ID.
func New(logger *slog.Logger) *core.Builder {
	return &core.Builder{
		Name:                       Name,
		Dir:                        Dir,
		Version:                    "1.0.0",
		ReleaseNotes:               map[string]string{"1.0.0": "Initial release."},
		Description:                description,
		Homepage:                   "https://www.sdss.org/dr17/data_access/value-added-catalogs/?vac_id=galaxy-zoo-3d",
		Citation:                   citation,
		ManualDownloadInstructions: instructions,
		Schema:                     Schema,
		Generator: core.GeneratorFunc(func(ctx context.Context, manualDir string) iter.Seq2[core.Example, error] {
			join := &core.FileJoin{
				Schema: Schema,
				Key:    core.SegmentKey("_", 1),
				Fields: fields,
				Logger: logger,
			}
			return join.Generate(ctx, fs.GlobSource{Root: filepath.Join(manualDir, Dir), Pattern: "*.gz"})
		}),
	}
}

func fields(key, path string, _ core.Row) (map[string]any, error) {
	raw := map[string]any{
		"mangaid": key,
		"image":   core.FileRef{Path: path, HDU: 0},
	}
	for i, name := range Masks {
		raw[name] = core.FileRef{Path: path, HDU: i + 1}
	}
	return raw, nil
}
