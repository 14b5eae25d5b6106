package loadtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestDriver_Run_ExactOutcomeCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	driver := NewDriver(0, server.URL, 5*time.Second, false)
	defer driver.Close()

	outcomes := driver.Run(context.Background(), 7)
	if len(outcomes) != 7 {
		t.Fatalf("Run() produced %d outcomes, want 7", len(outcomes))
	}
}

func TestDriver_Run_SequentialIndexes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	driver := NewDriver(3, server.URL, 5*time.Second, false)
	defer driver.Close()

	outcomes := driver.Run(context.Background(), 5)
	for i, o := range outcomes {
		if o.RequestIndex != i {
			t.Errorf("outcomes[%d].RequestIndex = %d, want %d", i, o.RequestIndex, i)
		}
		if o.UserID != 3 {
			t.Errorf("outcomes[%d].UserID = %d, want 3", i, o.UserID)
		}
	}
}

func TestDriver_SuccessCapturesServerTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Server-ID", "backend-2")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	driver := NewDriver(0, server.URL, 5*time.Second, false)
	defer driver.Close()

	outcomes := driver.Run(context.Background(), 1)
	o := outcomes[0]

	if !o.Success {
		t.Fatalf("Success = false, want true (status %d, error %q)", o.StatusCode, o.Error)
	}
	if o.Error != "" {
		t.Errorf("Error = %q, want empty on success", o.Error)
	}
	if o.ServerTag != "backend-2" {
		t.Errorf("ServerTag = %q, want %q", o.ServerTag, "backend-2")
	}
}

func TestDriver_SuccessWithoutServerTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	driver := NewDriver(0, server.URL, 5*time.Second, false)
	defer driver.Close()

	outcomes := driver.Run(context.Background(), 1)
	if outcomes[0].ServerTag != "" {
		t.Errorf("ServerTag = %q, want empty when the response carries no tag", outcomes[0].ServerTag)
	}
}

func TestDriver_Non200IsFailure(t *testing.T) {
	tests := []struct {
		status    int
		wantError string
	}{
		{500, "HTTP 500"},
		{502, "HTTP 502"},
		{404, "HTTP 404"},
		{201, "HTTP 201"},
	}

	for _, tt := range tests {
		t.Run(tt.wantError, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Server-ID", "backend-1")
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			driver := NewDriver(0, server.URL, 5*time.Second, false)
			defer driver.Close()

			o := driver.Run(context.Background(), 1)[0]

			if o.Success {
				t.Errorf("Success = true for status %d, want false", tt.status)
			}
			if o.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", o.Error, tt.wantError)
			}
			if o.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", o.StatusCode, tt.status)
			}
			if o.ServerTag != "" {
				t.Errorf("ServerTag = %q, want empty on failure", o.ServerTag)
			}
		})
	}
}

func TestDriver_TransportFailure(t *testing.T) {
	// Point at a closed server: every attempt fails at the transport level
	// but the driver still produces the full outcome sequence.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	driver := NewDriver(0, url, time.Second, false)
	defer driver.Close()

	outcomes := driver.Run(context.Background(), 3)
	if len(outcomes) != 3 {
		t.Fatalf("Run() produced %d outcomes, want 3 despite failures", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Success {
			t.Errorf("outcomes[%d].Success = true, want false", i)
		}
		if o.StatusCode != 0 {
			t.Errorf("outcomes[%d].StatusCode = %d, want 0 for transport failure", i, o.StatusCode)
		}
		if o.Error == "" {
			t.Errorf("outcomes[%d].Error empty, want failure description", i)
		}
	}
}

func TestDriver_TimeoutIsFailureOutcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	driver := NewDriver(0, server.URL, 50*time.Millisecond, false)
	defer driver.Close()

	o := driver.Run(context.Background(), 1)[0]
	if o.Success || o.StatusCode != 0 {
		t.Errorf("timeout produced Success=%v StatusCode=%d, want failure with status 0", o.Success, o.StatusCode)
	}
}

func TestDriver_SetsForwardedForHeader(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("X-Forwarded-For"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	driver := NewDriver(41, server.URL, 5*time.Second, false)
	defer driver.Close()
	driver.Run(context.Background(), 2)

	mu.Lock()
	defer mu.Unlock()
	for _, addr := range seen {
		if addr != "192.168.1.42" {
			t.Errorf("X-Forwarded-For = %q, want 192.168.1.42", addr)
		}
	}
}

func TestForwardedFor(t *testing.T) {
	tests := []struct {
		userID int
		want   string
	}{
		{0, "192.168.1.1"},
		{1, "192.168.1.2"},
		{253, "192.168.1.254"},
		{254, "192.168.1.1"},
		{507, "192.168.1.254"},
	}

	for _, tt := range tests {
		if got := ForwardedFor(tt.userID); got != tt.want {
			t.Errorf("ForwardedFor(%d) = %q, want %q", tt.userID, got, tt.want)
		}
	}
}
