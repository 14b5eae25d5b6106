// Package config loads and validates the harness configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"proxybench/internal/scenario"
)

// Config represents the top-level configuration
type Config struct {
	BaseURL            string           `yaml:"baseUrl"`
	Endpoint           string           `yaml:"endpoint,omitempty"`
	Timeout            Duration         `yaml:"timeout,omitempty"`
	InsecureSkipVerify bool             `yaml:"insecureSkipVerify,omitempty"`
	Targets            []string         `yaml:"targets"`
	Backends           []string         `yaml:"backends,omitempty"`
	HealthPath         string           `yaml:"healthPath,omitempty"`
	HealthSchema       string           `yaml:"healthSchema,omitempty"`
	SettleInterval     Duration         `yaml:"settleInterval,omitempty"`
	SampleInterval     Duration         `yaml:"sampleInterval,omitempty"`
	Scenarios          []ScenarioConfig `yaml:"scenarios,omitempty"`
}

// ScenarioConfig represents one load level in the scenario table
type ScenarioConfig struct {
	Name     string `yaml:"name"`
	Label    string `yaml:"label,omitempty"`
	Users    int    `yaml:"users"`
	Requests int    `yaml:"requests"`
}

// Duration wraps time.Duration so YAML and JSON carry strings like "30s"
type Duration time.Duration

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("invalid duration '%s': %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("invalid duration '%s': %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is given: a local
// proxy stack with three backends behind it.
func Default() *Config {
	cfg := &Config{
		BaseURL:            "https://localhost",
		Timeout:            Duration(30 * time.Second),
		InsecureSkipVerify: true,
		Targets: []string{
			"nginx_proxy",
			"redis",
			"backend_server_1",
			"backend_server_2",
			"backend_server_3",
		},
		Backends: []string{
			"http://localhost:8081",
			"http://localhost:8082",
			"http://localhost:8083",
		},
		HealthPath:     "/health",
		SettleInterval: Duration(5 * time.Second),
		SampleInterval: Duration(time.Second),
	}
	for _, s := range scenario.DefaultTable() {
		cfg.Scenarios = append(cfg.Scenarios, ScenarioConfig{
			Name:     s.Name,
			Label:    s.Label,
			Users:    s.Users,
			Requests: s.Requests,
		})
	}
	return cfg
}

// Load reads a YAML configuration file over the defaults
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if errs := ValidateConfig(config); len(errs) > 0 {
		return nil, errs
	}
	return config, nil
}

// ScenarioTable converts the configured scenarios for the scenario runner
func (c *Config) ScenarioTable() []scenario.Scenario {
	table := make([]scenario.Scenario, 0, len(c.Scenarios))
	for _, s := range c.Scenarios {
		table = append(table, scenario.Scenario{
			Name:     s.Name,
			Label:    s.Label,
			Users:    s.Users,
			Requests: s.Requests,
		})
	}
	return table
}

// EndpointURL returns the URL the load drivers request
func (c *Config) EndpointURL() string {
	if c.Endpoint == "" {
		return c.BaseURL
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(c.Endpoint, "/")
}
