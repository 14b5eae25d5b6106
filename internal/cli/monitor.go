package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"proxybench/internal/monitor"
	"proxybench/internal/output"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Sample container resources without generating load",
	Long: `Monitor polls the configured containers for CPU and memory at a fixed
interval and writes the collected series as JSON. Useful for watching the
stack under load generated elsewhere. Ctrl-C stops early and still writes
what was collected.`,
	Run: func(cmd *cobra.Command, args []string) {
		runMonitor(cmd, args)
	},
}

func runMonitor(cmd *cobra.Command, args []string) {
	duration, _ := cmd.Flags().GetDuration("duration")
	interval, _ := cmd.Flags().GetDuration("interval")
	outPath, _ := cmd.Flags().GetString("output")
	dockerHost, _ := cmd.Flags().GetString("docker-host")
	noColor, _ := cmd.Flags().GetBool("no-color")

	printer := output.NewPrinter(os.Stdout, noColor, false)

	cfg, err := loadConfig(cmd)
	if err != nil {
		printer.Errorf("%v", err)
		os.Exit(1)
	}
	if interval <= 0 {
		interval = cfg.SampleInterval.Std()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := monitor.NewDockerSourceHost(dockerHost)
	sampler := monitor.NewSampler(source, cfg.Targets)

	printer.Infof("Sampling %d targets every %s for %s", len(cfg.Targets), interval, duration)
	if err := sampler.Start(ctx, duration, interval); err != nil && ctx.Err() == nil {
		printer.Errorf("%v", err)
		os.Exit(1)
	}

	series := sampler.Series()
	if err := saveSeries(outPath, series); err != nil {
		printer.Errorf("saving monitoring data: %v", err)
		os.Exit(1)
	}

	for _, name := range cfg.Targets {
		if s := series[name]; s != nil {
			printer.Infof("%s: %d samples", name, len(s.CPU))
		}
	}
}

func init() {
	monitorCmd.Flags().Duration("duration", 60*time.Second, "how long to sample")
	monitorCmd.Flags().Duration("interval", 0, "sampling interval (default: config sampleInterval)")
	monitorCmd.Flags().String("output", "resource_monitoring.json", "resource series output file")
	monitorCmd.Flags().String("docker-host", "", "docker daemon address (default: $DOCKER_HOST or the local socket)")
}
