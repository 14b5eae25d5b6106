package cli

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"proxybench/internal/health"
	"proxybench/internal/loadtest"
	"proxybench/internal/monitor"
	"proxybench/internal/output"
	"proxybench/internal/scenario"
)

// stabilizationWait gives the sampler a few rounds of baseline data before
// any load starts.
const stabilizationWait = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scenario sequence against the stack",
	Long: `Run checks the stack's health, starts resource monitoring, then drives
the configured scenario sequence through the proxy. Request statistics land
in the results file and the per-container resource series in the monitoring
file.

Run everything:
  proxybench run

Run two levels only, against a custom stack:
  proxybench run --config stack.yaml --levels light,peak`,
	Run: func(cmd *cobra.Command, args []string) {
		runHarness(cmd, args)
	},
}

func runHarness(cmd *cobra.Command, args []string) {
	duration, _ := cmd.Flags().GetDuration("duration")
	levels, _ := cmd.Flags().GetStringSlice("levels")
	resultsPath, _ := cmd.Flags().GetString("results")
	monitoringPath, _ := cmd.Flags().GetString("monitoring")
	noMonitor, _ := cmd.Flags().GetBool("no-monitor")
	dockerHost, _ := cmd.Flags().GetString("docker-host")
	quiet, _ := cmd.Flags().GetBool("quiet")
	noColor, _ := cmd.Flags().GetBool("no-color")

	printer := output.NewPrinter(os.Stdout, noColor, quiet)

	cfg, err := loadConfig(cmd)
	if err != nil {
		printer.Errorf("%v", err)
		os.Exit(1)
	}

	selected, err := scenario.Filter(cfg.ScenarioTable(), levels)
	if err != nil {
		printer.Errorf("%v", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// No point loading a stack that is already down.
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
		printer.Errorf("stack is not healthy, aborting")
		os.Exit(1)
	}

	var source monitor.StatsSource
	var sampler *monitor.Sampler
	if !noMonitor {
		source = monitor.NewDockerSourceHost(dockerHost)
		sampler = monitor.NewSampler(source, cfg.Targets)
		go sampler.Start(ctx, duration, cfg.SampleInterval.Std())
		defer sampler.Stop()

		printer.Infof("Monitoring %d targets, collecting baseline...", len(cfg.Targets))
		select {
		case <-ctx.Done():
			return
		case <-time.After(stabilizationWait):
		}
	}

	runner := &scenario.Runner{
		Load:           loadtest.NewRunner(cfg.EndpointURL(), cfg.Timeout.Std(), cfg.InsecureSkipVerify),
		Source:         source,
		Targets:        cfg.Targets,
		SettleInterval: cfg.SettleInterval.Std(),
		Progress:       printer,
	}

	report, runErr := runner.Run(ctx, selected)

	if sampler != nil {
		sampler.Stop()
		if err := saveSeries(monitoringPath, sampler.Series()); err != nil {
			printer.Errorf("saving monitoring data: %v", err)
		}
	}
	if report.Len() > 0 {
		if err := report.Save(resultsPath); err != nil {
			printer.Errorf("saving results: %v", err)
		}
	}

	printer.Summary(report)

	if runErr != nil {
		printer.Errorf("%v", runErr)
		os.Exit(1)
	}
}

// saveSeries writes the per-target resource series as indented JSON.
func saveSeries(path string, series map[string]*monitor.Series) error {
	data, err := json.MarshalIndent(series, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func init() {
	runCmd.Flags().Duration("duration", 300*time.Second, "resource monitoring window")
	runCmd.Flags().StringSlice("levels", nil, "scenario names to run (default: all)")
	runCmd.Flags().String("results", "stress_test_results.json", "request statistics output file")
	runCmd.Flags().String("monitoring", "resource_monitoring.json", "resource series output file")
	runCmd.Flags().Bool("no-monitor", false, "skip container resource monitoring")
	runCmd.Flags().String("docker-host", "", "docker daemon address (default: $DOCKER_HOST or the local socket)")
	runCmd.Flags().Bool("quiet", false, "suppress per-scenario progress output")
}
