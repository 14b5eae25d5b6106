package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// State is the sampler lifecycle state.
type State int32

const (
	// StateIdle indicates the sampler has not started.
	StateIdle State = iota
	// StateSampling indicates the sampler is running rounds.
	StateSampling
	// StateStopped indicates the sampler has finished; it cannot restart.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSampling:
		return "sampling"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Series is the ordered time series accumulated for one target. The three
// slices always have equal length; timestamps serialize as RFC 3339.
type Series struct {
	CPU        []float64   `json:"cpu"`
	Memory     []float64   `json:"memory"`
	Timestamps []time.Time `json:"timestamps"`
}

// Sampler polls named targets at a fixed interval, accumulating one
// CPU/memory time series per target. A target that errors or reports
// incomplete stats is skipped for that round only; sampling of the other
// targets and of later rounds always continues. Targets may start, restart,
// or crash mid-run without affecting the sampler.
type Sampler struct {
	source  StatsSource
	targets []string

	state    atomic.Int32
	stopCh   chan struct{}
	stopOnce sync.Once

	mu     sync.Mutex
	series map[string]*Series
}

// NewSampler creates an idle sampler over the given targets.
func NewSampler(source StatsSource, targets []string) *Sampler {
	s := &Sampler{
		source:  source,
		targets: targets,
		stopCh:  make(chan struct{}),
		series:  make(map[string]*Series, len(targets)),
	}
	for _, t := range targets {
		s.series[t] = &Series{}
	}
	return s
}

// Start samples until duration elapses, Stop is called, or ctx is
// cancelled, whichever happens first. It blocks for the sampling lifetime
// and is normally run on its own goroutine. A sampler runs at most once.
func (s *Sampler) Start(ctx context.Context, duration, interval time.Duration) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateSampling)) {
		return fmt.Errorf("sampler is %s, cannot start", s.State())
	}
	defer s.state.Store(int32(StateStopped))

	if interval <= 0 {
		interval = time.Second
	}
	deadline := time.Now().Add(duration)

	for time.Now().Before(deadline) {
		select {
		case <-s.stopCh:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.sampleRound(ctx, time.Now())

		// The stop signal takes effect here, at the poll boundary; an
		// in-flight round is never interrupted.
		select {
		case <-s.stopCh:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil
}

// Stop signals the sampler to exit at the next poll boundary. It is
// idempotent and safe to call from any goroutine, including before Start.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// State returns the current lifecycle state.
func (s *Sampler) State() State {
	return State(s.state.Load())
}

// sampleRound fetches stats for every target once. Fetch errors and
// incomplete documents drop the target's sample for this round only.
func (s *Sampler) sampleRound(ctx context.Context, at time.Time) {
	for _, name := range s.targets {
		raw, err := s.source.Stats(ctx, name)
		if err != nil {
			continue
		}
		sample, skip := deriveSample(raw, at)
		if skip != SkipNone {
			continue
		}
		s.append(name, sample)
	}
}

func (s *Sampler) append(name string, sample ResourceSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series := s.series[name]
	series.CPU = append(series.CPU, sample.CPUPercent)
	series.Memory = append(series.Memory, sample.MemoryMB)
	series.Timestamps = append(series.Timestamps, sample.Timestamp)
}

// Series returns a copy of the accumulated per-target time series. It is
// safe to call while sampling, though callers normally read it after Stop.
func (s *Sampler) Series() map[string]*Series {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*Series, len(s.series))
	for name, series := range s.series {
		copied := &Series{
			CPU:        append([]float64(nil), series.CPU...),
			Memory:     append([]float64(nil), series.Memory...),
			Timestamps: append([]time.Time(nil), series.Timestamps...),
		}
		out[name] = copied
	}
	return out
}
