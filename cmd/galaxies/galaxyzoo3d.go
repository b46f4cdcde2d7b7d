package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/galaxies/pkg/datasets/galaxyzoo3d"
	"github.com/aretw0/galaxies/pkg/download"
)

var galaxyzoo3dCmd = &cobra.Command{
	Use:   "galaxyzoo3d",
	Short: "Galaxy Zoo 3D tools",
}

var galaxyzoo3dDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the Galaxy Zoo 3D segmentation maps from SDSS DR17",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService("")
		if err != nil {
			return err
		}
		client := svc.DownloadClient()
		defer client.Close()

		g := &download.GalaxyZoo3D{
			Client:   client,
			BaseURL:  svc.Config().GalaxyZoo3D.BaseURL,
			Dir:      filepath.Join(svc.ManualDir(), galaxyzoo3d.Dir),
			Logger:   slog.Default(),
			Progress: cmd.ErrOrStderr(),
		}
		report, err := g.Download(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "downloaded %d files, %d already present, in %s\n",
			report.Downloaded, report.Skipped, report.Elapsed.Round(time.Second))
		return nil
	},
}

func init() {
	galaxyzoo3dCmd.AddCommand(galaxyzoo3dDownloadCmd)
	rootCmd.AddCommand(galaxyzoo3dCmd)
}
