package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var infoFormat string

var infoCmd = &cobra.Command{
	Use:   "info <dataset>",
	Short: "Describe a dataset: schema, citation and download instructions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService("")
		if err != nil {
			return err
		}
		b, err := svc.Lookup(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch infoFormat {
		case "yaml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(b.Info())
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(b.Info())
		default:
			return fmt.Errorf("unknown format %q (want yaml or json)", infoFormat)
		}
	},
}

func init() {
	infoCmd.Flags().StringVar(&infoFormat, "format", "yaml", "Output format: yaml or json")
	rootCmd.AddCommand(infoCmd)
}
