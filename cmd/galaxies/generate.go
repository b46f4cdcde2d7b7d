package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/galaxies/pkg/adapters/fs"
	"github.com/aretw0/galaxies/pkg/core"
)

var (
	generateLimit       int
	generateOnDuplicate string
	generateFormat      string
)

var generateCmd = &cobra.Command{
	Use:   "generate <dataset>",
	Short: "Write the examples of a dataset to stdout",
	Long: `Generate joins the raw files of a dataset and writes its examples to stdout.

Formats:
  jsonl  one {"key": ..., "features": {...}} object per line, NaN as null
  yaml   one document per example
  csv    one row per example, nested fields flattened as parent/child`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := core.ParseDuplicatePolicy(generateOnDuplicate)
		if err != nil {
			return err
		}
		svc, err := newService(policy)
		if err != nil {
			return err
		}
		b, err := svc.Lookup(args[0])
		if err != nil {
			return err
		}

		w := bufio.NewWriter(cmd.OutOrStdout())
		defer w.Flush()
		out, err := fs.NewSerializer(generateFormat, w, b.Schema)
		if err != nil {
			return err
		}

		n := 0
		for ex, err := range svc.Generate(cmd.Context(), args[0]) {
			if err != nil {
				return fmt.Errorf("after %d examples: %w", n, err)
			}
			if err := out.Write(ex); err != nil {
				return err
			}
			n++
			if generateLimit > 0 && n >= generateLimit {
				break
			}
		}
		if err := out.Flush(); err != nil {
			return err
		}
		slog.Debug("generation finished", "dataset", args[0], "examples", n)
		return nil
	},
}

func init() {
	generateCmd.Flags().IntVar(&generateLimit, "limit", 0, "Stop after N examples (0 means all)")
	generateCmd.Flags().StringVar(&generateOnDuplicate, "on-duplicate", string(core.DuplicateError), "What to do with repeated keys: error, first or keep")
	generateCmd.Flags().StringVarP(&generateFormat, "format", "f", "jsonl", "Output format: "+strings.Join(fs.Formats, ", "))
	rootCmd.AddCommand(generateCmd)
}
