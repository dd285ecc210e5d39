package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/roster/internal/config"
	"github.com/five82/roster/internal/logtail"
)

func newLogsCmd() *cobra.Command {
	var (
		tail    int
		raw     bool
		noColor bool
		dir     bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the roster log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load roster config: %w", err)
			}
			if dir {
				fmt.Fprintln(cmd.OutOrStdout(), cfg.LogDir())
				return nil
			}

			lines, err := logtail.Read(cfg.LogFile, tail)
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no log entries in %s\n", cfg.LogFile)
				return nil
			}
			if !raw {
				lines = logtail.FormatLines(lines, !noColor)
			}
			out := cmd.OutOrStdout()
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&tail, "lines", "n", 50, "number of lines to show (0 for all)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print JSON records unformatted")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&dir, "dir", false, "print the log directory and exit")

	return cmd
}
