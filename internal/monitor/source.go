package monitor

import (
	"context"
	"errors"
)

// StatsSource reads resource statistics for named targets. Implementations
// must be safe for use from a single sampling goroutine plus snapshot
// callers.
type StatsSource interface {
	// Stats returns one stats document for the named target. The document
	// carries both the current and previous cumulative CPU snapshots, so a
	// single call suffices to derive a CPU percentage.
	Stats(ctx context.Context, name string) (RawStats, error)
}

// Sentinel errors a source reports for absent targets. Callers treat both
// as a skip for the current round, never as fatal.
var (
	ErrTargetNotFound   = errors.New("target not found")
	ErrTargetNotRunning = errors.New("target not running")
)
