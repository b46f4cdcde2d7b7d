// Package decals builds Galaxy Zoo DECaLS: volunteer and automated
// morphology measurements for 314000 galaxies.
package decals

import (
	"context"
	_ "embed"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/galaxies/pkg/adapters/fs"
	"github.com/aretw0/galaxies/pkg/core"
)

const (
	Name = "galaxy_zoo_decals"
	Dir  = "galaxy_zoo_decals"

	homepage = "https://doi.org/10.5281/zenodo.4196266"

	// concentrationLength is the number of posterior samples per answer.
	concentrationLength = 25
)

//go:embed citation.bib
var citation string

const description = `This repository contains the data released in the paper "Galaxy Zoo DECaLS:
Detailed Visual Morphology Measurements from Volunteers and Deep Learning
for 314000 Galaxies"`

const instructions = `Download from this [Zenodo
repository](https://zenodo.org/record/4573248#.YSEdzPfQ_mg) the
following three csv files and place them in ` + "`manual_dir/galaxy_zoo_decals`" + `

- gz_decals_volunteers_1_and_2.csv
- gz_decals_volunteers_5.csv
- gz_decals_auto_posteriors.csv

Also download all four gz_decals_dr5_png_part*.zip files and extract
them in ` + "`manual_dir/galaxy_zoo_decals`" + `. You should end up with
four folders structured like this:

    gz_decals_dr5_png_part*/J*/J*.png`

// Config selects the catalogue and the question set.
type Config struct {
	Name string
	CSV  string
	// DR5 switches to the decision tree of the fifth data release.
	DR5 bool
	// Auto reads the automated posteriors instead of volunteer votes.
	Auto bool
}

// Configs are the available configurations.
var Configs = []Config{
	{Name: "volunteers_1_and_2", CSV: "gz_decals_volunteers_1_and_2.csv"},
	{Name: "volunteers_5", CSV: "gz_decals_volunteers_5.csv", DR5: true},
	{Name: "auto", CSV: "gz_decals_auto_posteriors.csv", DR5: true, Auto: true},
}

// Question is one task of the decision tree with its possible answers.
type Question struct {
	Task    string
	Answers []string
}

// Questions is the decision tree of data releases 1 and 2.
var Questions = []Question{
	{"smooth-or-featured", []string{"smooth", "featured-or-disk", "artifact"}},
	{"how-rounded", []string{"completely", "in-between", "cigar-shaped"}},
	{"disk-edge-on", []string{"yes", "no"}},
	{"edge-on-bulge", []string{"rounded", "boxy", "none"}},
	{"bar", []string{"yes", "no"}},
	{"has-spiral-arms", []string{"yes", "no"}},
	{"spiral-winding", []string{"tight", "medium", "loose"}},
	{"spiral-arm-count", []string{"1", "2", "3", "4", "more-than-4"}},
	{"bulge-size", []string{"none", "obvious", "dominant"}},
	{"merging", []string{"merger", "tidal-debris", "both", "neither"}},
}

// questionsDR5 holds the tasks whose answers changed in data release 5.
var questionsDR5 = map[string][]string{
	"bar":              {"strong", "weak", "no"},
	"bulge-size":       {"dominant", "large", "moderate", "small", "none"},
	"how-rounded":      {"round", "in-between", "cigar-shaped"},
	"spiral-arm-count": {"1", "2", "3", "4", "more-than-4", "cant-tell"},
	"merging":          {"none", "minor-disturbance", "major-disturbance", "merger"},
}

// QuestionsDR5 is the decision tree of data release 5: the DR1/2 tasks in
// the same order with the revised answers.
var QuestionsDR5 = func() []Question {
	out := make([]Question, len(Questions))
	for i, q := range Questions {
		out[i] = q
		if answers, ok := questionsDR5[q.Task]; ok {
			out[i].Answers = answers
		}
	}
	return out
}()

// Metadata is the photometric metadata of each galaxy.
var Metadata = core.NewDict(
	core.F("iauname", core.Scalar{DType: core.String}),
	core.F("ra", core.Scalar{DType: core.Float64}),
	core.F("dec", core.Scalar{DType: core.Float64}),
	core.F("redshift", core.Scalar{DType: core.Float64}),
	core.F("elpetro_absmag_r", core.Scalar{DType: core.Float64}),
	core.F("sersic_nmgy_r", core.Scalar{DType: core.Float64}),
	core.F("petro_th50", core.Scalar{DType: core.Float64}),
	core.F("petro_th90", core.Scalar{DType: core.Float64}),
	core.F("petro_theta", core.Scalar{DType: core.Float64}),
	core.F("wrong_size_statistic", core.Scalar{DType: core.Float64}),
	core.F("wrong_size_warning", core.Scalar{DType: core.Bool}),
)

// Morphology returns the morphology feature for a decision tree. Volunteer
// catalogues carry vote counts; automated ones carry the concentration
// samples of each answer.
func Morphology(questions []Question, auto bool) core.Dict {
	var fields []core.Field
	scalar := func(name string, dtype core.DType) {
		fields = append(fields, core.F(name, core.Scalar{DType: dtype}))
	}
	for _, q := range questions {
		if !auto {
			scalar(q.Task+"_total-votes", core.Int64)
		}
		for _, a := range q.Answers {
			prefix := q.Task + "_" + a
			if auto {
				fields = append(fields, core.F(prefix+"_concentration", core.Sequence{
					Feature: core.Scalar{DType: core.Float64},
					Length:  concentrationLength,
				}))
			} else {
				scalar(prefix, core.Int64)
				scalar(prefix+"_debiased", core.Float64)
			}
			scalar(prefix+"_fraction", core.Float64)
		}
	}
	return core.NewDict(fields...)
}

// Builders returns one builder per configuration.
func Builders(logger *slog.Logger) []*core.Builder {
	builders := make([]*core.Builder, 0, len(Configs))
	for _, c := range Configs {
		builders = append(builders, New(c, logger))
	}
	return builders
}

// Lookup returns the configuration called name.
func Lookup(name string) (Config, error) {
	for _, c := range Configs {
		if c.Name == name {
			return c, nil
		}
	}
	return Config{}, fmt.Errorf("%w: %s/%s", core.ErrUnknownDataset, Name, name)
}

// New returns the builder of one configuration. Rows are keyed by IAU name
// and matched with "<part>/<iauname[:4]>/<iauname>.png" across the four
// image archive parts.
func New(config Config, logger *slog.Logger) *core.Builder {
	questions := Questions
	if config.DR5 {
		questions = QuestionsDR5
	}
	morphology := Morphology(questions, config.Auto)
	columns := morphology.Names()
	schema := core.NewDict(
		core.F("image", core.Image{Shape: [3]int{424, 424, 3}}),
		core.F("morphology", morphology),
		core.F("metadata", Metadata),
	)

	return &core.Builder{
		Name:                       Name,
		Dir:                        Dir,
		Config:                     config.Name,
		Version:                    "1.0.0",
		ReleaseNotes:               map[string]string{"1.0.0": "Initial release."},
		Description:                description,
		Homepage:                   homepage,
		Citation:                   citation,
		ManualDownloadInstructions: instructions,
		Schema:                     schema,
		Generator: core.GeneratorFunc(func(ctx context.Context, manualDir string) iter.Seq2[core.Example, error] {
			root := filepath.Join(manualDir, Dir)
			join := &core.RowJoin{
				Schema:    schema,
				KeyColumn: "iauname",
				Roles:     []core.Role{{Field: "image", Locator: ImageLocator(root)}},
				Fields: func(_ string, row core.Row) (map[string]any, error) {
					m, err := row.Pick(columns)
					if err != nil {
						return nil, err
					}
					meta, err := row.Pick(Metadata.Names())
					if err != nil {
						return nil, err
					}
					return map[string]any{"morphology": m, "metadata": meta}, nil
				},
				Logger: logger,
			}
			return join.Generate(ctx, fs.CSVSource{Path: filepath.Join(root, config.CSV)})
		}),
	}
}

// ImageLocator finds DR5 images in the extracted archive parts under root.
func ImageLocator(root string) core.Locator {
	parts := make([]string, 0, 4)
	for i := 1; i <= 4; i++ {
		parts = append(parts, filepath.Join(root, fmt.Sprintf("gz_decals_dr5_png_part%d", i)))
	}
	return fs.ShardedLocator{Dirs: parts, PrefixLen: 4, Ext: ".png"}
}
