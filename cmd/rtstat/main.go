// rtstat - Router Statistics Tool
//
// A single-shot polling client for home routers: opens a CLI session over
// telnet or SSH, runs the diagnostic commands one device profile knows,
// and prints a JSON snapshot of link state and traffic counters. Intended
// to be run periodically by an external scheduler (cron, a Telegraf exec
// input, systemd timers).
//
//	rtstat poll -m TG585v8 -r 192.168.1.254          # poll by flags
//	rtstat poll home --inventory routers.yaml        # poll by inventory name
//	rtstat poll home --redis 127.0.0.1:6379          # also publish to Redis
//	rtstat models                                    # list supported models
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtstat-tools/rtstat/pkg/router"
	"github.com/rtstat-tools/rtstat/pkg/settings"
	"github.com/rtstat-tools/rtstat/pkg/util"
	"github.com/rtstat-tools/rtstat/pkg/version"
)

var (
	verbose bool

	// Global state
	userSettings *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "rtstat",
	Short:             "Router Statistics Tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `rtstat polls a home router's CLI once and prints a JSON snapshot of
link state, uptime, bandwidth, and per-interface traffic counters.

  rtstat poll -m <model> -r <host> [-u user] [-x password]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load user settings
		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		// Log level: quiet by default, verbose on -v
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(pollCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd)
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List supported router models",
	Run: func(cmd *cobra.Command, args []string) {
		for _, m := range router.Models() {
			p, err := router.New(m)
			if err != nil {
				continue
			}
			fmt.Printf("%-12s %s\n", m, p.Name())
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("rtstat dev build (use 'make build' for version info)")
		} else {
			fmt.Printf("rtstat %s (%s)\n", version.Version, version.GitCommit)
		}
	},
}
