package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Run a tree behind the HTTP status adapter",
	Long:  `Ticks the selected tree and exposes /status, /blackboard, /events, /halt and /metrics until interrupted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd, args)
		opts.Interval, _ = cmd.Flags().GetDuration("interval")
		addr, _ := cmd.Flags().GetString("addr")

		sm := runner.NewSignalManager()
		defer sm.Stop()
		return cli.Serve(sm.Context(), opts, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().Duration("interval", runner.DefaultTickInterval, "Minimum time between ticks")
}
