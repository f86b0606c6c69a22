package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"rblxlocate/pkg/logger"
	"rblxlocate/pkg/ui"
)

var (
	// Version information, set with -ldflags at build time
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd runs find when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "rblxlocate",
	Short: "Find the Roblox server a player is in",
	Long: `rblxlocate finds which public server of a Roblox place a given player is
currently in, and prints the join script for every server they appear in.

It matches the player's avatar headshot against the headshots Roblox lists for
every player of every running server, so it works even when the player hides
their presence. A signed-in .ROBLOSECURITY session is required.

Place id, user id and security cookie are prompted for when they are not given
as flags, environment variables (RBLXLOCATE_*) or in the configuration file.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runFind,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./rblxlocate.yaml or $HOME/.config/rblxlocate/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")

	// The bare command accepts the same flags as find
	addFindFlags(rootCmd)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logger.Version = version

		// Keep scans quiet; only the management commands get the logo
		if cmd != rootCmd && cmd != findCmd && cmd.Name() != "version" && cmd.Name() != "help" {
			ui.PrintLogo()
		}
	}

	rootCmd.SetVersionTemplate(`rblxlocate {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
