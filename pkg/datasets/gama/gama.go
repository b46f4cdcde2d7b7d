// Package gama builds the SDSS images of galaxies in the GAMA survey.
package gama

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
	Name       = "gama"
	Dir        = "GAMA"
	imageWidth = 525
)

//go:embed citation.bib
var citation string

const description = `Dataset containing SDSS images corresponding to galaxies in the GAMA survey. Sources
selection is based on Porter-Temple et al. (2022).`

const instructions = `Manually extract the data to the ` + "`manual_dir/GAMA`" + ` directory.
Images are read from ` + "`GAMA/SDSS images/*.jpg`" + `.`

// Schema is the feature set of every example.
var Schema = core.NewDict(
	core.F("cataid", core.Text{}),
	core.F("image", core.Image{Shape: [3]int{imageWidth, imageWidth, 3}}),
)

// New returns the gama builder. Examples are keyed by CATAID, the stem of
// each image name.
func New(logger *slog.Logger) *core.Builder {
	return &core.Builder{
		Name:                       Name,
		Dir:                        Dir,
		Version:                    "1.0.0",
		ReleaseNotes:               map[string]string{"1.0.0": "Initial release."},
		Description:                description,
		Homepage:                   "http://www.gama-survey.org/",
		Citation:                   citation,
		ManualDownloadInstructions: instructions,
		Schema:                     Schema,
		Generator: core.GeneratorFunc(func(ctx context.Context, manualDir string) iter.Seq2[core.Example, error] {
			join := &core.FileJoin{
				Schema: Schema,
				Key:    core.StemKey,
				Fields: func(key, path string, _ core.Row) (map[string]any, error) {
					return map[string]any{"cataid": key, "image": path}, nil
				},
				Logger: logger,
			}
			return join.Generate(ctx, fs.GlobSource{
				Root:    filepath.Join(manualDir, Dir, "SDSS images"),
				Pattern: "*.jpg",
			})
		}),
	}
}
