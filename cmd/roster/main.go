// Package main is the entry point for the roster CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/roster/internal/app"
)

var version = "0.1.0"

// Global flags.
var (
	configPath  string
	pollSeconds int
	observer    string
	debug       bool
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "roster: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var prefsPath string

	root := &cobra.Command{
		Use:   "roster",
		Short: "Browse a paginated user list with refetch, fetch more and polling",
		Long: `roster loads users from a REST or GraphQL endpoint page by page.
Run without a subcommand to open the terminal UI, or use "roster watch"
to print every query snapshot without a UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: configPath,
				PrefsPath:  prefsPath,
				PollEvery:  pollSeconds,
				Observer:   observer,
				Debug:      debug,
			})
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "override roster config path (optional)")
	root.PersistentFlags().IntVar(&pollSeconds, "poll", 0, "poll interval in seconds (optional, overrides poll_seconds)")
	root.PersistentFlags().StringVar(&observer, "observer", "slog", `query event observer ("slog" or "noop")`)
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log fetch starts and skipped polls")
	root.Flags().StringVar(&prefsPath, "prefs", "", "override preferences path (optional)")

	root.AddCommand(newWatchCmd())
	root.AddCommand(newLogsCmd())
	root.AddCommand(newVersionCmd())

	return root
}
