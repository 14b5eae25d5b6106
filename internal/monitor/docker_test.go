package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func dockerTestServer(t *testing.T, containers map[string]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/"+dockerAPIVersion+"/containers/") {
			http.NotFound(w, r)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/"+dockerAPIVersion+"/containers/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 {
			http.NotFound(w, r)
			return
		}
		name, op := parts[0], parts[1]

		running, ok := containers[name]
		if !ok {
			http.NotFound(w, r)
			return
		}

		switch op {
		case "json":
			status := "running"
			if !running {
				status = "exited"
			}
			w.Write([]byte(`{"State": {"Running": ` + boolJSON(running) + `, "Status": "` + status + `"}}`))
		case "stats":
			if r.URL.Query().Get("stream") != "false" {
				t.Errorf("stats request without stream=false: %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{
				"cpu_stats": {"cpu_usage": {"total_usage": 200}, "system_cpu_usage": 2000, "online_cpus": 2},
				"precpu_stats": {"cpu_usage": {"total_usage": 100}, "system_cpu_usage": 1000},
				"memory_stats": {"usage": 1048576}
			}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func boolJSON(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func TestDockerSourceStats(t *testing.T) {
	srv := dockerTestServer(t, map[string]bool{"nginx_proxy": true})
	defer srv.Close()

	source := NewDockerSourceHost(srv.URL)
	raw, err := source.Stats(context.Background(), "nginx_proxy")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got := gjson.GetBytes(raw, "memory_stats.usage").Int(); got != 1048576 {
		t.Errorf("memory usage = %d, want 1048576", got)
	}

	sample, skip := deriveSample(raw, time.Now())
	if skip != SkipNone {
		t.Fatalf("derive: skip %v", skip)
	}
	if sample.CPUPercent != 20.0 {
		t.Errorf("cpu percent = %v, want 20", sample.CPUPercent)
	}
}

func TestDockerSourceMissingContainer(t *testing.T) {
	srv := dockerTestServer(t, nil)
	defer srv.Close()

	source := NewDockerSourceHost(srv.URL)
	_, err := source.Stats(context.Background(), "ghost")
	if !errors.Is(err, ErrTargetNotFound) {
		t.Errorf("error = %v, want ErrTargetNotFound", err)
	}
}

func TestDockerSourceStoppedContainer(t *testing.T) {
	srv := dockerTestServer(t, map[string]bool{"redis": false})
	defer srv.Close()

	source := NewDockerSourceHost(srv.URL)
	_, err := source.Stats(context.Background(), "redis")
	if !errors.Is(err, ErrTargetNotRunning) {
		t.Fatalf("error = %v, want ErrTargetNotRunning", err)
	}
	if !strings.Contains(err.Error(), "exited") {
		t.Errorf("error %q does not mention container status", err)
	}
}

func TestDockerSourceTCPHost(t *testing.T) {
	srv := dockerTestServer(t, map[string]bool{"backend_server_1": true})
	defer srv.Close()

	host := "tcp://" + strings.TrimPrefix(srv.URL, "http://")
	source := NewDockerSourceHost(host)
	if _, err := source.Stats(context.Background(), "backend_server_1"); err != nil {
		t.Fatalf("stats over tcp host: %v", err)
	}
}
