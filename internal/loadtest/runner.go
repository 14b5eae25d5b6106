package loadtest

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Warm-up requests let the target stabilize routing and caches before
// measurement starts; their outcomes and errors are discarded.
const (
	warmupRequests = 3
	warmupTimeout  = 5 * time.Second
	warmupPause    = 100 * time.Millisecond
)

// DefaultTimeout is the per-request timeout applied when none is
// configured.
const DefaultTimeout = 30 * time.Second

// Runner fans a configurable number of simulated users out against a single
// endpoint and aggregates their outcomes into one Result.
type Runner struct {
	// Endpoint is the full URL every request targets.
	Endpoint string

	// Timeout bounds each individual request. Zero means DefaultTimeout.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS verification for self-signed
	// deployments under test.
	InsecureSkipVerify bool
}

// NewRunner creates a load test runner for the given endpoint.
func NewRunner(endpoint string, timeout time.Duration, insecureSkipVerify bool) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		Endpoint:           endpoint,
		Timeout:            timeout,
		InsecureSkipVerify: insecureSkipVerify,
	}
}

// Run executes a load test with exactly users concurrent drivers issuing
// requestsPerUser sequential requests each. Every driver is bound to a
// distinct synthetic identity 0..users-1. Request failures are absorbed
// into the result; the returned error reports invalid parameters only.
func (r *Runner) Run(ctx context.Context, users, requestsPerUser int) (*Result, error) {
	if users <= 0 {
		return nil, fmt.Errorf("concurrent users must be greater than 0, got %d", users)
	}
	if requestsPerUser <= 0 {
		return nil, fmt.Errorf("requests per user must be greater than 0, got %d", requestsPerUser)
	}

	r.warmup(ctx)

	start := time.Now()

	// One buffered slot per driver: each driver hands off its full outcome
	// sequence exactly once, so no two drivers ever interleave writes.
	batches := make(chan []Outcome, users)
	var wg sync.WaitGroup

	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			driver := NewDriver(userID, r.Endpoint, r.Timeout, r.InsecureSkipVerify)
			defer driver.Close()
			batches <- driver.Run(ctx, requestsPerUser)
		}(i)
	}

	wg.Wait()
	close(batches)

	outcomes := make([]Outcome, 0, users*requestsPerUser)
	for batch := range batches {
		outcomes = append(outcomes, batch...)
	}

	return analyze(outcomes, time.Since(start)), nil
}

// warmup issues a few throwaway requests against the endpoint. Errors are
// ignored: an unhealthy target shows up in the measured outcomes instead.
func (r *Runner) warmup(ctx context.Context) {
	client := &http.Client{
		Timeout: warmupTimeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: r.InsecureSkipVerify},
		},
	}
	defer client.CloseIdleConnections()

	for i := 0; i < warmupRequests; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.Endpoint, nil)
		if err != nil {
			return
		}
		if resp, err := client.Do(req); err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
		time.Sleep(warmupPause)
	}
}
