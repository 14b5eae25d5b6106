package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

// Error joins the individual messages, one per line
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) ValidationErrors {
	var errors ValidationErrors

	if config.BaseURL == "" {
		errors = append(errors, ValidationError{
			Path:    "baseUrl",
			Message: "baseUrl is required",
		})
	} else if u, err := url.Parse(config.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, ValidationError{
			Path:    "baseUrl",
			Message: fmt.Sprintf("invalid url: %s", config.BaseURL),
		})
	}

	if config.Timeout < 0 {
		errors = append(errors, ValidationError{
			Path:    "timeout",
			Message: "timeout cannot be negative",
		})
	}

	if len(config.Targets) == 0 {
		errors = append(errors, ValidationError{
			Path:    "targets",
			Message: "at least one target is required",
		})
	}

	for i, backend := range config.Backends {
		if u, err := url.Parse(backend); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("backends[%d]", i),
				Message: fmt.Sprintf("invalid url: %s", backend),
			})
		}
	}

	seen := make(map[string]bool, len(config.Scenarios))
	for i, s := range config.Scenarios {
		if s.Name == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("scenarios[%d].name", i),
				Message: "name is required",
			})
		} else if seen[s.Name] {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("scenarios[%d].name", i),
				Message: fmt.Sprintf("duplicate scenario: %s", s.Name),
			})
		}
		seen[s.Name] = true

		if s.Users < 1 {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("scenarios[%d].users", i),
				Message: "users must be at least 1",
			})
		}
		if s.Requests < 1 {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("scenarios[%d].requests", i),
				Message: "requests must be at least 1",
			})
		}
	}

	return errors
}
