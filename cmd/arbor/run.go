package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [dir]",
	Short: "Tick a tree until it completes",
	Long:  `Builds the selected tree and ticks it until the root completes. Ctrl+C halts the tree.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd, args)
		opts.Interval, _ = cmd.Flags().GetDuration("interval")
		opts.MaxTicks, _ = cmd.Flags().GetUint64("max-ticks")
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.OutOrStdout())
		}
		return cli.Run(opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Duration("interval", runner.DefaultTickInterval, "Minimum time between ticks")
	runCmd.Flags().Uint64("max-ticks", 0, "Stop after this many ticks (0 = unbounded)")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
