package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/galaxies/pkg/adapters/lifecycle"
	"github.com/aretw0/galaxies/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dataset>",
	Short: "Recount a dataset whenever its raw files change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(core.DuplicateKeep)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		b, events, err := svc.Watch(ctx, args[0])
		if err != nil {
			return err
		}
		src := lifecycle.NewSource(b.FullName(), events)
		if err := src.Start(ctx); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		count := func() {
			stats, err := svc.Count(ctx, b.FullName())
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("count failed", "dataset", b.FullName(), "error", err)
				return
			}
			fmt.Fprintf(out, "%s: %d examples (%d skipped, %d filtered)\n", b.FullName(), stats.Yielded, stats.Skipped, stats.Filtered)
		}

		count()
		slog.Info("watching", "dataset", b.FullName(), "dir", svc.DatasetDir(b))
		for e := range src.Events() {
			slog.Debug("change detected", "event", e.String())
			count()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
