package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"proxybench/internal/health"
	"proxybench/internal/output"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the proxy, backends, and health endpoint",
	Long: `Check probes every service the harness depends on and prints one line
per service. The exit code is non-zero when the proxy or any backend is
unreachable, so it slots into scripts that wait for the stack to come up.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCheck(cmd, args)
	},
}

func runCheck(cmd *cobra.Command, args []string) {
	noColor, _ := cmd.Flags().GetBool("no-color")
	printer := output.NewPrinter(os.Stdout, noColor, false)

	cfg, err := loadConfig(cmd)
	if err != nil {
		printer.Errorf("%v", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	checker := health.NewChecker(cfg.BaseURL, cfg.Backends, cfg.HealthPath, cfg.InsecureSkipVerify)
	if cfg.HealthSchema != "" {
		if err := checker.WithSchema(cfg.HealthSchema); err != nil {
			printer.Errorf("%v", err)
			os.Exit(1)
		}
	}

	checks, healthy := checker.Run(ctx)
	printer.Checks(checks)
	if !healthy {
		os.Exit(1)
	}
}
