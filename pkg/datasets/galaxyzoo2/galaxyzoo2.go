// Package galaxyzoo2 builds the Galaxy Zoo 2 "original" sample with the
// Hart et al. (2016) morphological classification.
package galaxyzoo2

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
	Name = "galaxy_zoo_2"
	Dir  = "galaxy_zoo_2"

	imagesURL = "https://zenodo.org/record/3565489#.YSOxXffQ9hF"
	tablesURL = "https://data.galaxyzoo.org/"
)

//go:embed citation.bib
var citation string

const description = `Dataset containing images from the "original" sample of subject images in
Galaxy Zoo 2 and morphological classification from Hart et al. (2016).
Images are obtained from [this repository](` + imagesURL + `) and
the morhological classification from "GZ2 - Table 1 - Normal-depth sample
with new debiasing method - CSV" (from Hart et al. 2016), which is available at
[data.galaxyzoo.org](` + tablesURL + `)`

const instructions = `Download from [this Zenodo repository](` + imagesURL + `) files:

- gz2_filename_mapping.csv
- images_gz2.zip

Download from the [galaxy zoo data site](` + tablesURL + `) file:

- gz2_hart16.csv

Extract them in ` + "`manual_dir/galaxy_zoo_2`" + `.`

// Question is one task of the decision tree with its possible answers.
type Question struct {
	Task    string
	Answers []string
}

// Questions is the Galaxy Zoo 2 decision tree.
var Questions = []Question{
	{"t01_smooth_or_features", []string{"a01_smooth", "a02_features_or_disk", "a03_star_or_artifact"}},
	{"t02_edgeon", []string{"a04_yes", "a05_no"}},
	{"t03_bar", []string{"a06_bar", "a07_no_bar"}},
	{"t04_spiral", []string{"a08_spiral", "a09_no_spiral"}},
	{"t05_bulge_prominence", []string{"a10_no_bulge", "a11_just_noticeable", "a12_obvious", "a13_dominant"}},
	{"t06_odd", []string{"a14_yes", "a15_no"}},
	{"t07_rounded", []string{"a16_completely_round", "a17_in_between", "a18_cigar_shaped"}},
	{"t08_odd_feature", []string{"a19_ring", "a20_lens_or_arc", "a21_disturbed", "a22_irregular", "a23_other", "a24_merger", "a38_dust_lane"}},
	{"t09_bulge_shape", []string{"a25_rounded", "a26_boxy", "a27_no_bulge"}},
	{"t10_arms_winding", []string{"a28_tight", "a29_medium", "a30_loose"}},
	{"t11_arms_number", []string{"a31_1", "a32_2", "a33_3", "a34_4", "a36_more_than_4", "a37_cant_tell"}},
}

// answerColumns are the per-answer column suffixes and their types.
var answerColumns = []struct {
	Suffix string
	DType  core.DType
}{
	{"count", core.Int64},
	{"weight", core.Float64},
	{"fraction", core.Float64},
	{"weighted_fraction", core.Float64},
	{"debiased", core.Float64},
	{"flag", core.Int64},
}

// Metadata is the positional metadata of each galaxy.
var Metadata = core.NewDict(
	core.F("dr7objid", core.Scalar{DType: core.Int64}),
	core.F("ra", core.Scalar{DType: core.Float64}),
	core.F("dec", core.Scalar{DType: core.Float64}),
	core.F("rastring", core.Scalar{DType: core.String}),
	core.F("decstring", core.Scalar{DType: core.String}),
)

// Morphology returns the table1 feature for a decision tree.
func Morphology(questions []Question) core.Dict {
	fields := []core.Field{
		core.F("gz2_class", core.Scalar{DType: core.String}),
		core.F("total_classifications", core.Scalar{DType: core.Int64}),
		core.F("total_votes", core.Scalar{DType: core.Int64}),
	}
	for _, q := range questions {
		for _, a := range q.Answers {
			for _, c := range answerColumns {
				fields = append(fields, core.F(q.Task+"_"+a+"_"+c.Suffix, core.Scalar{DType: c.DType}))
			}
		}
	}
	return core.NewDict(fields...)
}

// Table1 is the classification feature.
var Table1 = Morphology(Questions)

// Schema is the feature set of every example.
var Schema = core.NewDict(
	core.F("image", core.Image{Shape: [3]int{424, 424, 3}}),
	core.F("table1", Table1),
	core.F("metadata", Metadata),
)

// New returns the galaxy_zoo_2 builder. The classification table is merged
// with the filename mapping on dr7objid = objid; images are keyed by asset_id.
func New(logger *slog.Logger) *core.Builder {
	return &core.Builder{
		Name:                       Name,
		Dir:                        Dir,
		Version:                    "1.0.0",
		ReleaseNotes:               map[string]string{"1.0.0": "Initial release."},
		Description:                description,
		Homepage:                   imagesURL,
		Citation:                   citation,
		ManualDownloadInstructions: instructions,
		Schema:                     Schema,
		Generator: core.GeneratorFunc(func(ctx context.Context, manualDir string) iter.Seq2[core.Example, error] {
			return generate(ctx, filepath.Join(manualDir, Dir), logger)
		}),
	}
}

func generate(ctx context.Context, root string, logger *slog.Logger) iter.Seq2[core.Example, error] {
	return func(yield func(core.Example, error) bool) {
		index, err := loadIndex(ctx, root)
		if err != nil {
			yield(core.Example{}, err)
			return
		}

		join := &core.FileJoin{
			Schema: Schema,
			Key:    core.NumericStemKey,
			Index:  index.Lookup,
			Fields: fields,
			Logger: logger,
		}
		for ex, err := range join.Generate(ctx, fs.GlobSource{Root: filepath.Join(root, "images"), Pattern: "*.jpg"}) {
			if !yield(ex, err) || err != nil {
				return
			}
		}
	}
}

// loadIndex merges gz2_hart16.csv with gz2_filename_mapping.csv and indexes
// the result by asset_id.
func loadIndex(ctx context.Context, root string) (fs.Index, error) {
	mapping, err := fs.IndexBy(ctx, fs.CSVSource{Path: filepath.Join(root, "gz2_filename_mapping.csv")}, "objid")
	if err != nil {
		return nil, err
	}
	table1 := fs.CSVSource{Path: filepath.Join(root, "gz2_hart16.csv")}
	return fs.IndexBy(ctx, fs.InnerMerge(table1, "dr7objid", mapping), "asset_id")
}

func fields(_, path string, row core.Row) (map[string]any, error) {
	table1, err := row.Pick(Table1.Names())
	if err != nil {
		return nil, err
	}
	metadata, err := row.Pick(Metadata.Names())
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"image":    path,
		"table1":   table1,
		"metadata": metadata,
	}, nil
}
