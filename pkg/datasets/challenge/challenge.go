// Package challenge builds the data of the 2014 Kaggle Galaxy Zoo challenge.
package challenge

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
	Name = "galaxy_zoo_challenge"
	Dir  = "galaxy_zoo_challenge"

	// Configurations.
	Train = "train"
	Test  = "test"

	url = "https://www.kaggle.com/c/galaxy-zoo-the-galaxy-challenge"
)

//go:embed citation.bib
var citation string

const (
	descriptionTrain = `This dataset contains the training data for the 2014 [Kaggle Galaxy Zoo
competion](` + url + `). This includes images and labels.`

	descriptionTest = `This dataset contains the test data used to evaluate the 2014 [Kaggle Galaxy
Zoo competion](` + url + `). This includes only images.`
)

const instructions = `Download the following files from the [Kaggle competition site](` + url + `):

- images_training_rev1.zip
- images_test_rev1.zip
- training_solutions_rev1.zip

Extract them in ` + "`manual_dir/galaxy_zoo_challenge`"

// Classes are the 37 vote fractions predicted in the challenge.
var Classes = []string{
	"Class1.1", "Class1.2", "Class1.3",
	"Class2.1", "Class2.2",
	"Class3.1", "Class3.2",
	"Class4.1", "Class4.2",
	"Class5.1", "Class5.2", "Class5.3", "Class5.4",
	"Class6.1", "Class6.2",
	"Class7.1", "Class7.2", "Class7.3",
	"Class8.1", "Class8.2", "Class8.3", "Class8.4", "Class8.5", "Class8.6", "Class8.7",
	"Class9.1", "Class9.2", "Class9.3",
	"Class10.1", "Class10.2", "Class10.3",
	"Class11.1", "Class11.2", "Class11.3", "Class11.4", "Class11.5", "Class11.6",
}

func image() core.Field {
	return core.F("image", core.Image{Shape: [3]int{424, 424, 3}})
}

func galaxyID() core.Field {
	return core.F("GalaxyID", core.Scalar{DType: core.Int64})
}

func labels() core.Dict {
	fields := make([]core.Field, 0, len(Classes))
	for _, c := range Classes {
		fields = append(fields, core.F(c, core.Scalar{DType: core.Float64}))
	}
	return core.NewDict(fields...)
}

// Builders returns the train and test builders.
func Builders(logger *slog.Logger) []*core.Builder {
	return []*core.Builder{New(Train, logger), New(Test, logger)}
}

// New returns the builder of one configuration. It panics on an unknown
// configuration name.
func New(config string, logger *slog.Logger) *core.Builder {
	b := &core.Builder{
		Name:                       Name,
		Dir:                        Dir,
		Config:                     config,
		Version:                    "1.0.0",
		ReleaseNotes:               map[string]string{"1.0.0": "Initial release."},
		Homepage:                   url,
		Citation:                   citation,
		ManualDownloadInstructions: instructions,
	}

	switch config {
	case Train:
		b.Description = descriptionTrain
		b.Schema = core.NewDict(image(), galaxyID(), core.F("label", labels()))
		b.SupervisedKeys = &core.SupervisedKeys{Input: "image", Target: "label"}
		b.Generator = core.GeneratorFunc(func(ctx context.Context, manualDir string) iter.Seq2[core.Example, error] {
			root := filepath.Join(manualDir, Dir)
			join := &core.RowJoin{
				Schema:    b.Schema,
				KeyColumn: "GalaxyID",
				Roles: []core.Role{{
					Field: "image",
					Locator: fs.FlatLocator{
						Dirs:    []string{filepath.Join(root, "images_training_rev1")},
						Pattern: "%s.jpg",
						Listing: fs.NewListing(),
					},
				}},
				Fields: func(key string, row core.Row) (map[string]any, error) {
					label, err := row.Pick(Classes)
					if err != nil {
						return nil, err
					}
					return map[string]any{"GalaxyID": key, "label": label}, nil
				},
				Logger: logger,
			}
			return join.Generate(ctx, fs.CSVSource{Path: filepath.Join(root, "training_solutions_rev1.csv")})
		})
	case Test:
		b.Description = descriptionTest
		b.Schema = core.NewDict(image(), galaxyID())
		b.Generator = core.GeneratorFunc(func(ctx context.Context, manualDir string) iter.Seq2[core.Example, error] {
			join := &core.FileJoin{
				Schema: b.Schema,
				Key:    core.NumericStemKey,
				Fields: func(key, path string, _ core.Row) (map[string]any, error) {
					return map[string]any{"GalaxyID": key, "image": path}, nil
				},
				Logger: logger,
			}
			return join.Generate(ctx, fs.GlobSource{
				Root:    filepath.Join(manualDir, Dir, "images_test_rev1"),
				Pattern: "*.jpg",
			})
		})
	default:
		panic(fmt.Sprintf("challenge: unknown config %q", config))
	}
	return b
}
