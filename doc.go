// Package galaxies builds galaxy morphology datasets from raw survey and
// simulation files.
//
// Each dataset pairs tabular metadata (CSV catalogues) with image files laid
// out in a manual download directory. A builder describes the dataset: its
// schema, citation and download instructions. Its generator joins the rows
// and the files and yields keyed examples lazily.
//
// Datasets:
//
//   - **eagle**: EAGLE simulation galaxies in three orientations, one
//     configuration per simulation run.
//   - **galaxy_zoo_2**: Galaxy Zoo 2 images with the Hart et al. (2016) table.
//   - **galaxy_zoo_3d**: MaNGA Galaxy Zoo 3D segmentation maps.
//   - **galaxy_zoo_challenge**: the Kaggle Galaxy Zoo challenge, train and test.
//   - **galaxy_zoo_decals**: Galaxy Zoo DECaLS volunteer and automated votes.
//   - **gama**: SDSS images of GAMA survey galaxies.
//
// Usage:
//
//	svc, err := galaxies.New(
//		galaxies.WithManualDir("~/tensorflow_datasets/downloads/manual"),
//		galaxies.WithLogger(logger),
//	)
//
//	for ex, err := range svc.Generate(ctx, "eagle/RefL0025N0752") {
//		...
//	}
package galaxies
