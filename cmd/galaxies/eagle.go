package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/galaxies/pkg/download"
)

// EnvEaglePassword holds the password of the EAGLE public database.
const EnvEaglePassword = "EAGLE_PASSWORD"

var (
	eagleStartSnap   int
	eagleStopSnap    int
	eagleMinMassStar float64
)

var eagleCmd = &cobra.Command{
	Use:   "eagle",
	Short: "EAGLE simulation tools",
}

var eagleDownloadCmd = &cobra.Command{
	Use:   "download <user> <simulation>",
	Short: "Download catalogues and images from the EAGLE public database",
	Long: `Download queries the Subhalo and Sizes tables of every snapshot in
[--start-snap, --stop-snap) and then downloads the face, edge and box images
of every galaxy. Snapshots already queried and images already on disk are skipped.

The password is read from $EAGLE_PASSWORD (a .env file works too) or prompted for.
Accounts are requested at ` + download.DatabaseHomepage + `.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, simulation := args[0], args[1]
		svc, err := newService("")
		if err != nil {
			return err
		}

		out := cmd.ErrOrStderr()
		fmt.Fprintln(out, "You are requesting to download:")
		fmt.Fprintf(out, "  simulation:    %s\n", simulation)
		fmt.Fprintf(out, "  snapshots:     [%d, %d)\n", eagleStartSnap, eagleStopSnap)
		fmt.Fprintf(out, "  min_mass_star: %.1e\n", eagleMinMassStar)
		fmt.Fprintf(out, "  location:      %s\n", svc.ManualDir())
		fmt.Fprintf(out, "Login to the EAGLE public database as %s\n", user)

		password, err := eaglePassword()
		if err != nil {
			return err
		}

		client := svc.DownloadClient()
		defer client.Close()

		e := &download.Eagle{
			DB:       download.NewWebDB(client, svc.Config().Eagle.DatabaseURL, user, password),
			Client:   client,
			Logger:   slog.Default(),
			Progress: out,
		}
		return e.Download(cmd.Context(), download.EagleRequest{
			Simulation:  simulation,
			StartSnap:   eagleStartSnap,
			StopSnap:    eagleStopSnap,
			MinMassStar: eagleMinMassStar,
			ManualDir:   svc.ManualDir(),
		})
	},
}

func eaglePassword() (string, error) {
	if p := os.Getenv(EnvEaglePassword); p != "" {
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal to prompt for the password; set " + EnvEaglePassword)
	}
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func init() {
	eagleDownloadCmd.Flags().IntVar(&eagleStartSnap, "start-snap", download.DefaultStartSnap, "First snapshot to download")
	eagleDownloadCmd.Flags().IntVar(&eagleStopSnap, "stop-snap", download.DefaultStopSnap, "Stopping (exclusive) snapshot")
	eagleDownloadCmd.Flags().Float64Var(&eagleMinMassStar, "min-mass-star", download.DefaultMinMassStar, "Minimum stellar mass of the galaxies")
	eagleCmd.AddCommand(eagleDownloadCmd)
	rootCmd.AddCommand(eagleCmd)
}
