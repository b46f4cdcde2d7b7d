package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/galaxies"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of galaxies",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "galaxies version %s\n", strings.TrimSpace(galaxies.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
