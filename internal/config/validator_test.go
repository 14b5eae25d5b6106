package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		BaseURL: "https://localhost",
		Targets: []string{"nginx_proxy"},
		Scenarios: []ScenarioConfig{
			{Name: "light", Users: 10, Requests: 10},
		},
	}
}

func hasError(errs ValidationErrors, path string) bool {
	for _, e := range errs {
		if e.Path == path {
			return true
		}
	}
	return false
}

// TestValidationError_Error tests the ValidationError.Error() method
func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Path: "scenarios[0].users", Message: "users must be at least 1"}
	if got := err.Error(); got != "scenarios[0].users: users must be at least 1" {
		t.Errorf("error = %q", got)
	}
}

func TestValidateConfigAccepts(t *testing.T) {
	if errs := ValidateConfig(validConfig()); len(errs) > 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestValidateConfigRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"missing base url", func(c *Config) { c.BaseURL = "" }, "baseUrl"},
		{"relative base url", func(c *Config) { c.BaseURL = "localhost/path" }, "baseUrl"},
		{"negative timeout", func(c *Config) { c.Timeout = -1 }, "timeout"},
		{"no targets", func(c *Config) { c.Targets = nil }, "targets"},
		{"bad backend", func(c *Config) { c.Backends = []string{"not-a-url"} }, "backends[0]"},
		{"unnamed scenario", func(c *Config) { c.Scenarios[0].Name = "" }, "scenarios[0].name"},
		{"zero users", func(c *Config) { c.Scenarios[0].Users = 0 }, "scenarios[0].users"},
		{"zero requests", func(c *Config) { c.Scenarios[0].Requests = 0 }, "scenarios[0].requests"},
		{
			"duplicate scenario names",
			func(c *Config) {
				c.Scenarios = append(c.Scenarios, ScenarioConfig{Name: "light", Users: 1, Requests: 1})
			},
			"scenarios[1].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := ValidateConfig(cfg)
			if !hasError(errs, tt.path) {
				t.Errorf("no error at %q, got %v", tt.path, errs)
			}
		})
	}
}

func TestValidateConfigCollectsAll(t *testing.T) {
	cfg := &Config{}
	errs := ValidateConfig(cfg)
	if len(errs) < 2 {
		t.Fatalf("errors = %v, want baseUrl and targets both reported", errs)
	}
	if !hasError(errs, "baseUrl") || !hasError(errs, "targets") {
		t.Errorf("errors = %v, want both baseUrl and targets", errs)
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Path: "baseUrl", Message: "baseUrl is required"},
		{Path: "targets", Message: "at least one target is required"},
	}
	msg := errs.Error()
	if !strings.Contains(msg, "baseUrl: baseUrl is required") {
		t.Errorf("message %q missing first error", msg)
	}
	if !strings.Contains(msg, "targets: at least one target is required") {
		t.Errorf("message %q missing second error", msg)
	}
}
