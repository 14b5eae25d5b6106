package loadtest

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// forwardedForHeader carries the synthetic originating address so the
// system under test can exercise its per-client routing logic without real
// distinct network sources.
const forwardedForHeader = "X-Forwarded-For"

// serverTagHeader identifies which backend served a response.
const serverTagHeader = "X-Server-ID"

// Driver executes one simulated user's request sequence against a single
// endpoint. Each driver owns its HTTP client and connection pool so that
// connection exhaustion in one simulated user cannot mask another's
// behavior.
type Driver struct {
	UserID   int
	Endpoint string
	Timeout  time.Duration

	client *http.Client
}

// NewDriver creates a driver for the given synthetic user identity. The
// driver's transport keeps at most one idle connection and never retries.
func NewDriver(userID int, endpoint string, timeout time.Duration, insecureSkipVerify bool) *Driver {
	transport := &http.Transport{
		MaxIdleConns:        1,
		MaxIdleConnsPerHost: 1,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: insecureSkipVerify},
	}

	return &Driver{
		UserID:   userID,
		Endpoint: endpoint,
		Timeout:  timeout,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// ForwardedFor returns the synthetic originating address for a user
// identity, cycling through 192.168.1.1 to 192.168.1.254.
func ForwardedFor(userID int) string {
	return fmt.Sprintf("192.168.1.%d", userID%254+1)
}

// Run issues count sequential requests and returns exactly count outcomes
// in request order. A failed request is recorded as a failure outcome and
// never aborts the remaining requests.
func (d *Driver) Run(ctx context.Context, count int) []Outcome {
	outcomes := make([]Outcome, 0, count)
	for i := 0; i < count; i++ {
		outcomes = append(outcomes, d.attempt(ctx, i))
	}
	return outcomes
}

// attempt issues one GET against the endpoint. Timeouts and transport
// failures become status-0 outcomes.
func (d *Driver) attempt(ctx context.Context, index int) Outcome {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.Endpoint, nil)
	if err != nil {
		return transportOutcome(d.UserID, index, time.Since(start), err)
	}
	req.Header.Set(forwardedForHeader, ForwardedFor(d.UserID))

	resp, err := d.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return transportOutcome(d.UserID, index, elapsed, err)
	}

	// Drain so the connection can be reused by the next request.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return completedOutcome(d.UserID, index, resp.StatusCode, elapsed, resp.Header.Get(serverTagHeader))
}

// Close releases the driver's idle connections.
func (d *Driver) Close() {
	d.client.CloseIdleConnections()
}
