package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/roster/internal/app"
)

func newWatchCmd() *cobra.Command {
	var (
		pages       int
		once        bool
		format      string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print every snapshot of the users query without a UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 0 {
				return fmt.Errorf("--pages must not be negative")
			}
			return app.Watch(cmd.Context(), app.WatchOptions{
				ConfigPath:  configPath,
				PollEvery:   pollSeconds,
				Pages:       pages,
				Once:        once,
				Format:      format,
				MetricsAddr: metricsAddr,
				Observer:    observer,
				Debug:       debug,
				Out:         cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 0, "fetch this many extra pages after the first")
	cmd.Flags().BoolVar(&once, "once", false, "exit once the requested pages have loaded")
	cmd.Flags().StringVarP(&format, "output", "o", app.FormatYAML, "output format (yaml, summary)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}
