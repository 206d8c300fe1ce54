package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot assembles the command tree.
func buildRoot() *cobra.Command {
	global := &GlobalFlags{}
	root := createRootCommand(global)
	root.AddCommand(
		createRunCommand(global),
		createEncodeCommand(),
		createDecodeCommand(),
		createServeCommand(global),
		createStatusCommand(),
		createLaunchCommand(),
	)
	return root
}

func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "launchr",
		Short: "Launch child executables with named arguments",
		Long: `launchr starts a child executable with ordered named arguments
(-key value ...) and tracks whether it is still running.

Examples:
  launchr run --path ./game --arg level=5 --arg playerName=Hero
  launchr encode --arg level=5 --arg playerName=Hero
  launchr decode -- game -level 5 -playerName Hero
  launchr serve --config launchr.toml
  launchr status --api-url http://localhost:8080/api`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to config file (toml, yaml or json)")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.LogFormat, "log-format", "", "log format override (text, json, color)")
	return root
}
