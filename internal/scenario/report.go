package scenario

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"proxybench/internal/loadtest"
	"proxybench/internal/monitor"
)

// Result pairs one scenario's request statistics with the resource state
// of the targets immediately before and after the run.
type Result struct {
	LoadTest      *loadtest.Result               `json:"load_test"`
	BaselineStats map[string]monitor.TargetStats `json:"baseline_stats"`
	PostTestStats map[string]monitor.TargetStats `json:"post_test_stats"`
}

// Report accumulates scenario results and marshals them as a single JSON
// object whose keys appear in the order scenarios ran. encoding/json sorts
// map keys, so the report keeps its own key order and writes the object
// itself.
type Report struct {
	keys    []string
	results map[string]*Result
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{results: make(map[string]*Result)}
}

// Add files a result under key, appending to the key order. Re-adding an
// existing key replaces the result without moving it.
func (r *Report) Add(key string, result *Result) {
	if _, ok := r.results[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.results[key] = result
}

// Len returns the number of results.
func (r *Report) Len() int { return len(r.keys) }

// Keys returns the result keys in insertion order.
func (r *Report) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Get returns the result for key, or nil.
func (r *Report) Get(key string) *Result {
	return r.results[key]
}

// MarshalJSON writes the report object with keys in insertion order.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(r.results[key])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Save writes the report as indented JSON, creating parent directories as
// needed.
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
