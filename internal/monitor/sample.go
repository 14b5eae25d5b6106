// Package monitor samples CPU and memory of named target containers while
// a load test runs, so request statistics can be correlated with resource
// pressure on the system under test.
package monitor

import (
	"time"

	"github.com/tidwall/gjson"
)

// ResourceSample is one CPU/memory reading for one named target at one
// point in time.
type ResourceSample struct {
	Timestamp  time.Time `json:"timestamp"`
	CPUPercent float64   `json:"cpu_percent"`
	MemoryMB   float64   `json:"memory_mb"`
}

// SkipReason explains why a sampling round contributed nothing for a
// target. Skips are data, not errors: they never interrupt sampling.
type SkipReason int

const (
	// SkipNone means a sample was derived.
	SkipNone SkipReason = iota

	// SkipMissingFields means the stats document lacked one of the
	// cumulative CPU counters or the memory reading.
	SkipMissingFields

	// SkipNoSystemDelta means the system CPU counter did not move between
	// the two snapshots; a percentage would be meaningless or divide by
	// zero.
	SkipNoSystemDelta
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipMissingFields:
		return "missing fields"
	case SkipNoSystemDelta:
		return "no system cpu delta"
	default:
		return "unknown"
	}
}

// RawStats is one stats document as returned by the resource source. It
// carries the current and previous cumulative CPU snapshots and the current
// memory reading, in the Docker stats API layout.
type RawStats []byte

// Required fields of a stats document.
const (
	pathCPUTotal     = "cpu_stats.cpu_usage.total_usage"
	pathPreCPUTotal  = "precpu_stats.cpu_usage.total_usage"
	pathSystemCPU    = "cpu_stats.system_cpu_usage"
	pathPreSystemCPU = "precpu_stats.system_cpu_usage"
	pathMemoryUsage  = "memory_stats.usage"
	pathPerCPUUsage  = "cpu_stats.cpu_usage.percpu_usage"
	pathOnlineCPUs   = "cpu_stats.online_cpus"
)

// deriveSample derives one resource sample from a stats document, or
// reports why this round contributes nothing for the target. CPU percent is
// (cpu delta / system delta) * cores * 100 over the document's two
// cumulative snapshots; memory is reported in megabytes.
func deriveSample(raw RawStats, at time.Time) (ResourceSample, SkipReason) {
	doc := string(raw)

	cur := gjson.Get(doc, pathCPUTotal)
	prev := gjson.Get(doc, pathPreCPUTotal)
	sys := gjson.Get(doc, pathSystemCPU)
	prevSys := gjson.Get(doc, pathPreSystemCPU)
	mem := gjson.Get(doc, pathMemoryUsage)

	if !cur.Exists() || !prev.Exists() || !sys.Exists() || !prevSys.Exists() || !mem.Exists() {
		return ResourceSample{}, SkipMissingFields
	}

	systemDelta := sys.Float() - prevSys.Float()
	if systemDelta <= 0 {
		return ResourceSample{}, SkipNoSystemDelta
	}

	cpuDelta := cur.Float() - prev.Float()

	// Core count differs across daemon API versions: older ones list
	// per-core usage, newer ones report online_cpus.
	cores := 1.0
	if percpu := gjson.Get(doc, pathPerCPUUsage); percpu.IsArray() {
		cores = float64(len(percpu.Array()))
	} else if online := gjson.Get(doc, pathOnlineCPUs); online.Exists() && online.Float() > 0 {
		cores = online.Float()
	}

	return ResourceSample{
		Timestamp:  at,
		CPUPercent: cpuDelta / systemDelta * cores * 100,
		MemoryMB:   mem.Float() / (1024 * 1024),
	}, SkipNone
}
