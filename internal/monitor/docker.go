package monitor

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	dockerAPIVersion = "v1.41"
	defaultSocket    = "/var/run/docker.sock"
	dockerTimeout    = 10 * time.Second
)

// DockerSource reads container statistics from the Docker Engine API. It
// implements StatsSource keyed by container name.
type DockerSource struct {
	client *http.Client
	base   string
}

// NewDockerSource connects to the daemon named by DOCKER_HOST, falling back
// to the default unix socket when unset.
func NewDockerSource() *DockerSource {
	return NewDockerSourceHost(os.Getenv("DOCKER_HOST"))
}

// NewDockerSourceHost connects to a specific daemon address. unix://
// sockets are dialed directly; tcp:// and http(s):// hosts go over plain
// HTTP, which also covers test servers.
func NewDockerSourceHost(host string) *DockerSource {
	if host == "" {
		host = "unix://" + defaultSocket
	}

	if strings.HasPrefix(host, "unix://") {
		socket := strings.TrimPrefix(host, "unix://")
		transport := &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socket)
			},
		}
		return &DockerSource{
			client: &http.Client{Transport: transport, Timeout: dockerTimeout},
			base:   "http://docker/" + dockerAPIVersion,
		}
	}

	base := host
	if strings.HasPrefix(base, "tcp://") {
		base = "http://" + strings.TrimPrefix(base, "tcp://")
	}
	return &DockerSource{
		client: &http.Client{Timeout: dockerTimeout},
		base:   strings.TrimRight(base, "/") + "/" + dockerAPIVersion,
	}
}

// Stats implements StatsSource. Missing and stopped containers are reported
// through ErrTargetNotFound / ErrTargetNotRunning so callers can skip the
// round without treating it as fatal.
func (s *DockerSource) Stats(ctx context.Context, name string) (RawStats, error) {
	inspect, err := s.get(ctx, name, "/containers/"+name+"/json")
	if err != nil {
		return nil, err
	}

	if !gjson.GetBytes(inspect, "State.Running").Bool() {
		status := gjson.GetBytes(inspect, "State.Status").String()
		return nil, fmt.Errorf("%w: %s is %s", ErrTargetNotRunning, name, status)
	}

	// stream=false returns a single document holding both the current and
	// previous cumulative CPU snapshots.
	return s.get(ctx, name, "/containers/"+name+"/stats?stream=false")
}

func (s *DockerSource) get(ctx context.Context, name, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docker api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("docker api: reading %s: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, name)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("docker api: %s returned %d", path, resp.StatusCode)
	}
	return body, nil
}
