package scenario

import (
	"context"
	"time"

	"proxybench/internal/loadtest"
	"proxybench/internal/monitor"
)

// DefaultSettleInterval is the pause between scenarios, letting connection
// churn from one load level drain before the next begins.
const DefaultSettleInterval = 5 * time.Second

// LoadRunner drives one load level and aggregates its outcomes.
// *loadtest.Runner implements it.
type LoadRunner interface {
	Run(ctx context.Context, users, requestsPerUser int) (*loadtest.Result, error)
}

// Progress receives per-scenario notifications as the sequence runs. Both
// methods are called from the runner's goroutine.
type Progress interface {
	ScenarioStart(s Scenario)
	ScenarioDone(s Scenario, result *Result)
}

// Runner executes a scenario sequence, snapshotting target resources
// around every load run.
type Runner struct {
	Load           LoadRunner
	Source         monitor.StatsSource
	Targets        []string
	SettleInterval time.Duration
	Progress       Progress
}

// Run executes the scenarios in order and returns their results keyed by
// scenario label. A scenario whose load run fails aborts the sequence;
// results for completed scenarios are returned alongside the error.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (*Report, error) {
	settle := r.SettleInterval
	if settle <= 0 {
		settle = DefaultSettleInterval
	}

	report := NewReport()
	for i, s := range scenarios {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if r.Progress != nil {
			r.Progress.ScenarioStart(s)
		}

		baseline := r.snapshot(ctx)
		stats, err := r.Load.Run(ctx, s.Users, s.Requests)
		if err != nil {
			return report, err
		}
		post := r.snapshot(ctx)

		result := &Result{
			LoadTest:      stats,
			BaselineStats: baseline,
			PostTestStats: post,
		}
		report.Add(s.Key(), result)
		if r.Progress != nil {
			r.Progress.ScenarioDone(s, result)
		}

		if i < len(scenarios)-1 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(settle):
			}
		}
	}
	return report, nil
}

func (r *Runner) snapshot(ctx context.Context) map[string]monitor.TargetStats {
	if r.Source == nil || len(r.Targets) == 0 {
		return nil
	}
	return monitor.Snapshot(ctx, r.Source, r.Targets)
}
