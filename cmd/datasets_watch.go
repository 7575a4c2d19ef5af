package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/runmanager/internal/log"
	"github.com/zjrosen/runmanager/internal/presentation"
	"github.com/zjrosen/runmanager/internal/watcher"
)

var datasetsWatchCmd = &cobra.Command{
	Use:   "datasets:watch",
	Short: "Redraw the info table whenever an info file changes",
	Long: `Watch the collection root and reload the info of datasets whose info
file is written, created or removed. New dataset directories are picked up
when the collection is discovered rather than listed in the config.

Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		svc, err := openService(nil)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		render := func() error {
			rows, err := svc.InfoTable(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, presentation.RenderDatasetTable(presentation.FromInfoRows(rows)))
			return err
		}
		if err := render(); err != nil {
			return err
		}

		wcfg := watcher.DefaultConfig(svc.Root(), svc.InfoFile())
		if cfg.Watch.Debounce > 0 {
			wcfg.DebounceDur = cfg.Watch.Debounce
		}
		w, err := watcher.New(wcfg)
		if err != nil {
			return err
		}
		changes, err := w.Start()
		if err != nil {
			_ = w.Stop()
			return err
		}
		defer func() { _ = w.Stop() }()

		for {
			select {
			case <-ctx.Done():
				return nil
			case change := <-changes:
				log.Debug(log.CatWatcher, "info files changed", "datasets", change.Datasets)
				if err := svc.Refresh(ctx, change.Datasets); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "reload failed: %v\n", err)
					continue
				}
				fmt.Fprintf(out, "\n%s  changed: %v\n", time.Now().Format(time.TimeOnly), change.Datasets)
				if err := render(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "render failed: %v\n", err)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(datasetsWatchCmd)
}
