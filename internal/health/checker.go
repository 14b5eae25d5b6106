// Package health probes the proxy, its backends, and the aggregate health
// endpoint before a load run, so the harness never hammers a stack that is
// already down.
package health

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const defaultProbeTimeout = 10 * time.Second

// Check is the outcome of probing one service.
type Check struct {
	Name       string
	URL        string
	StatusCode int
	Err        error
	Required   bool
}

// OK reports whether the probe got a 200.
func (c Check) OK() bool {
	return c.Err == nil && c.StatusCode == http.StatusOK
}

// Checker probes the services the harness depends on. The proxy and every
// backend are required; the aggregate health endpoint is advisory.
type Checker struct {
	BaseURL    string
	Backends   []string
	HealthPath string

	client *http.Client
	schema *jsonschema.Schema
}

// NewChecker builds a checker for the given stack.
func NewChecker(baseURL string, backends []string, healthPath string, insecureSkipVerify bool) *Checker {
	return &Checker{
		BaseURL:    baseURL,
		Backends:   backends,
		HealthPath: healthPath,
		client: &http.Client{
			Timeout: defaultProbeTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: insecureSkipVerify},
			},
		},
	}
}

// WithSchema compiles a JSON schema that the health endpoint's body must
// satisfy.
func (c *Checker) WithSchema(schemaText string) error {
	schema, err := jsonschema.CompileString("health.schema.json", schemaText)
	if err != nil {
		return fmt.Errorf("compiling health schema: %w", err)
	}
	c.schema = schema
	return nil
}

// Run probes every service. It returns the individual checks and whether
// all required services passed.
func (c *Checker) Run(ctx context.Context) ([]Check, bool) {
	var checks []Check

	checks = append(checks, c.probe(ctx, "proxy", c.BaseURL, true, false))
	for i, backend := range c.Backends {
		name := fmt.Sprintf("backend-%d", i+1)
		checks = append(checks, c.probe(ctx, name, backend, true, false))
	}
	if c.HealthPath != "" {
		url := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(c.HealthPath, "/")
		checks = append(checks, c.probe(ctx, "health", url, false, true))
	}

	ok := true
	for _, check := range checks {
		if check.Required && !check.OK() {
			ok = false
		}
	}
	return checks, ok
}

// probe GETs one URL. When validateBody is set and a schema is configured,
// the response body must parse as JSON and satisfy it.
func (c *Checker) probe(ctx context.Context, name, url string, required, validateBody bool) Check {
	check := Check{Name: name, URL: url, Required: required}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		check.Err = err
		return check
	}
	resp, err := c.client.Do(req)
	if err != nil {
		check.Err = err
		return check
	}
	defer resp.Body.Close()
	check.StatusCode = resp.StatusCode

	if !validateBody || c.schema == nil {
		io.Copy(io.Discard, resp.Body)
		return check
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		check.Err = fmt.Errorf("reading body: %w", err)
		return check
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		check.Err = fmt.Errorf("health body is not json: %w", err)
		return check
	}
	if err := c.schema.Validate(doc); err != nil {
		check.Err = fmt.Errorf("health body does not match schema: %w", err)
	}
	return check
}
