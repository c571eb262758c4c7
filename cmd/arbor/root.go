package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor runs behavior trees",
	Long: `Arbor builds behavior trees from YAML or JSON definitions and ticks them.
The sample robot nodes are always registered; use --demo to load the bundled trees.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the tree definitions")
	rootCmd.PersistentFlags().Bool("demo", false, "Use the bundled sample trees")
	rootCmd.PersistentFlags().String("redis", "", "Read tree definitions from the Redis server at this address")
	rootCmd.PersistentFlags().String("tools", "", "Tools file declaring process nodes; keep it outside the definitions directory")
	rootCmd.PersistentFlags().StringP("tree", "t", "", "ID of the tree to use")
	rootCmd.PersistentFlags().Bool("debug", false, "Log every status change to stderr")
}

// runOptions reads the persistent flags. A positional argument overrides --dir.
func runOptions(cmd *cobra.Command, args []string) cli.RunOptions {
	dir, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		dir = args[0]
	}
	demo, _ := cmd.Flags().GetBool("demo")
	redisAddr, _ := cmd.Flags().GetString("redis")
	toolsPath, _ := cmd.Flags().GetString("tools")
	treeID, _ := cmd.Flags().GetString("tree")
	debug, _ := cmd.Flags().GetBool("debug")

	return cli.RunOptions{
		Dir:       dir,
		Demo:      demo,
		RedisAddr: redisAddr,
		ToolsPath: toolsPath,
		TreeID:    treeID,
		Debug:     debug,
		Color:     term.IsTerminal(int(os.Stdout.Fd())),
		Out:       cmd.OutOrStdout(),
	}
}
