package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"proxybench/internal/config"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "proxybench",
	Short:   "Stress a proxy stack while watching its containers",
	Version: version,
	Long: `Proxybench drives escalating levels of concurrent HTTP load through a
proxy and records per-request outcomes, latency quantiles, and the CPU and
memory of the containers behind it, so the breaking point of the stack shows
up in one report.`,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print help
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringP("config", "c", "", "path to a YAML configuration file")
	RootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	// Add subcommands to root command
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(checkCmd)
	RootCmd.AddCommand(monitorCmd)
}

// loadConfig resolves the configuration for a command: the file named by
// --config, or the built-in defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
