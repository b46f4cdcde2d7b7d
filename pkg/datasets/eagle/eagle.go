// Package eagle builds the mock galaxy images of the EAGLE simulations.
package eagle

import (
	"context"
	_ "embed"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/galaxies/pkg/adapters/fs"
	"github.com/aretw0/galaxies/pkg/core"
)

const Name = "eagle"

// Simulations are the available configurations, one per simulation run.
var Simulations = []string{
	"RefL0100N1504",
	"RefL0025N0752",
	"RefL0025N0376",
	"RecalL0025N0752",
}

// Orientations maps each image feature to its file prefix.
var Orientations = []struct {
	Field  string
	Prefix string
}{
	{"Image_box", "galrand"},
	{"Image_edge", "galedge"},
	{"Image_face", "galface"},
}

// Sizes are the half-mass radius columns grouped under the Sizes feature.
var Sizes = []string{
	"R_halfmass30",
	"R_halfmass100",
	"R_halfmass30_projected",
	"R_halfmass100_projected",
}

//go:embed citation.bib
var citation string

const description = `This dataset contains mock galaxy images generated from the [EAGLE collection of
hydrodynamic cosmological simulations](http://icc.dur.ac.uk/Eagle/).

Images are 256x256x3 pngs in three orientation: edge-on, face-on and box, ie.
aligned with the xy projection of the simulation box.

Entries in the dataset are identified by their GalaxyID, matching the ones in the
EAGLE public database. The snapshot number is also included.

Datasets for each simulation can be access using the name ` + "`eagle/simulation`" + ` (e.g.
` + "`eagle/RefL0100N1504`" + `)`

const instructions = `There is a dedicated command to download EAGLE data.

Usage:

    galaxies eagle download [flags] USER SIMULATION

For more information and additional options run:

    galaxies eagle download --help`

// Schema is the feature set of every example.
var Schema = newSchema()

func newSchema() core.Dict {
	image := core.Image{Shape: [3]int{256, 256, 3}, Encoding: "png"}
	fields := []core.Field{core.F("GalaxyID", core.Scalar{DType: core.Int64})}
	for _, o := range Orientations {
		fields = append(fields, core.F(o.Field, image))
	}
	sizes := make([]core.Field, 0, len(Sizes))
	for _, s := range Sizes {
		sizes = append(sizes, core.F(s, core.Scalar{DType: core.Float32}))
	}
	fields = append(fields,
		core.F("Snapshot", core.ClassLabel{NumClasses: 28}),
		core.F("Sizes", core.NewDict(sizes...)),
	)
	return core.NewDict(fields...)
}

// Builders returns one builder per simulation.
func Builders(logger *slog.Logger) []*core.Builder {
	builders := make([]*core.Builder, 0, len(Simulations))
	for _, sim := range Simulations {
		builders = append(builders, New(sim, logger))
	}
	return builders
}

// New returns the builder of one simulation. It reads
// "<manual>/<simulation>/<snapshot>/data.csv" and the images next to it.
func New(simulation string, logger *slog.Logger) *core.Builder {
	return &core.Builder{
		Name:                       Name,
		Dir:                        simulation,
		Config:                     simulation,
		Version:                    "1.0.0",
		ReleaseNotes:               map[string]string{"1.0.0": "Initial release."},
		Description:                description,
		Homepage:                   "https://icc.dur.ac.uk/Eagle/",
		Citation:                   citation,
		ManualDownloadInstructions: instructions,
		Schema:                     Schema,
		Generator: core.GeneratorFunc(func(ctx context.Context, manualDir string) iter.Seq2[core.Example, error] {
			return generate(ctx, filepath.Join(manualDir, simulation), logger)
		}),
	}
}

func generate(ctx context.Context, root string, logger *slog.Logger) iter.Seq2[core.Example, error] {
	return func(yield func(core.Example, error) bool) {
		entries, err := os.ReadDir(root)
		if err != nil {
			yield(core.Example{}, fmt.Errorf("%w: %s", core.ErrNoManualData, root))
			return
		}

		listing := fs.NewListing()
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			snap := filepath.Join(root, e.Name())
			src := fs.CSVSource{Path: filepath.Join(snap, "data.csv")}
			for ex, err := range snapshotJoin(snap, listing, logger).Generate(ctx, src) {
				if !yield(ex, err) || err != nil {
					return
				}
			}
		}
	}
}

// snapshotJoin requires all three orientations of a galaxy and drops rows
// without an image (Image_ID == -1).
func snapshotJoin(snap string, listing *fs.Listing, logger *slog.Logger) *core.RowJoin {
	images := []string{filepath.Join(snap, "images")}
	roles := make([]core.Role, 0, len(Orientations))
	for _, o := range Orientations {
		roles = append(roles, core.Role{
			Field:   o.Field,
			Locator: fs.FlatLocator{Dirs: images, Pattern: o.Prefix + "_%s.png", Listing: listing},
		})
	}

	if logger != nil {
		logger = logger.With("snapshot", filepath.Base(snap))
	}
	return &core.RowJoin{
		Schema:    Schema,
		KeyColumn: "GalaxyID",
		Roles:     roles,
		Filter:    hasImage,
		Fields:    fields,
		Logger:    logger,
	}
}

func hasImage(row core.Row) (bool, error) {
	raw, err := row.Get("Image_ID")
	if err != nil {
		return false, err
	}
	id, err := core.Int64.Parse(core.Substitute(raw))
	if err != nil {
		return false, &core.FieldError{Field: "Image_ID", Value: raw, Err: err}
	}
	return id.(int64) != -1, nil
}

func fields(key string, row core.Row) (map[string]any, error) {
	snap, err := row.Get("SnapNum")
	if err != nil {
		return nil, err
	}
	sizes, err := row.Pick(Sizes)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"GalaxyID": key,
		"Snapshot": snap,
		"Sizes":    sizes,
	}, nil
}
