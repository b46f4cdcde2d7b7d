package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/galaxies"
	"github.com/aretw0/galaxies/pkg/core"
)

var (
	verbose    bool
	configPath string
	manualDir  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "galaxies",
	Short: "Build galaxy morphology datasets from raw survey files",
	Long: `Galaxies joins the catalogues and images of galaxy surveys and simulations
(EAGLE, Galaxy Zoo 2, 3D, Challenge, DECaLS and GAMA) into keyed examples.
Raw files are read from the manual download directory.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to load .env", "error", err)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&manualDir, "manual-dir", "", "Manual download directory (default ~/tensorflow_datasets/downloads/manual)")
}

// newService builds the service from the persistent flags.
func newService(policy core.DuplicatePolicy) (*galaxies.Service, error) {
	opts := []galaxies.Option{
		galaxies.WithManualDir(manualDir),
		galaxies.WithLogger(slog.Default()),
	}
	if policy != "" {
		opts = append(opts, galaxies.WithDuplicatePolicy(policy))
	}
	if configPath != "" {
		cfg, err := galaxies.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		opts = append(opts, galaxies.WithConfig(cfg))
	}
	return galaxies.New(opts...)
}
