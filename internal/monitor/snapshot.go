package monitor

import (
	"context"
	"time"
)

// TargetStats is an instantaneous CPU/memory reading for one target. Error
// is set instead of readings when the target could not be sampled, so a
// snapshot never fails as a whole.
type TargetStats struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemoryMB   float64 `json:"memory_mb"`
	Error      string  `json:"error,omitempty"`
}

// Snapshot reads instantaneous stats for every target. An unreachable
// target produces an error entry; a target whose stats document is
// incomplete reads as zero (a container at rest between rounds).
func Snapshot(ctx context.Context, source StatsSource, targets []string) map[string]TargetStats {
	out := make(map[string]TargetStats, len(targets))
	for _, name := range targets {
		raw, err := source.Stats(ctx, name)
		if err != nil {
			out[name] = TargetStats{Error: err.Error()}
			continue
		}
		sample, skip := deriveSample(raw, time.Now())
		if skip != SkipNone {
			out[name] = TargetStats{}
			continue
		}
		out[name] = TargetStats{CPUPercent: sample.CPUPercent, MemoryMB: sample.MemoryMB}
	}
	return out
}
