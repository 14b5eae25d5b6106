// Package scenario sequences load-test scenarios against a target and
// collects their results into an ordered report.
package scenario

import (
	"fmt"
	"strings"
)

// Scenario is one load level: Users concurrent identities each issuing
// Requests requests. Label, when set, names the result in the report
// instead of Name.
type Scenario struct {
	Name     string
	Label    string
	Users    int
	Requests int
}

// Key returns the name the scenario's result is filed under.
func (s Scenario) Key() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}

// DefaultTable returns the built-in escalation sequence, from a light
// smoke load up to a connection-exhaustion probe.
func DefaultTable() []Scenario {
	return []Scenario{
		{Name: "light", Label: "Light Load", Users: 10, Requests: 10},
		{Name: "medium", Label: "Medium Load", Users: 25, Requests: 20},
		{Name: "heavy", Label: "Heavy Load", Users: 50, Requests: 30},
		{Name: "peak", Label: "Peak Load", Users: 100, Requests: 50},
		{Name: "sustained", Label: "Sustained Load", Users: 200, Requests: 100},
		{Name: "high_sustained", Label: "High Sustained", Users: 500, Requests: 50},
		{Name: "breaking", Label: "Breaking Point", Users: 1000, Requests: 10},
		{Name: "limit", Label: "Limit Test", Users: 1500, Requests: 5},
		{Name: "overload", Label: "Overload", Users: 2000, Requests: 3},
		{Name: "extreme_overload", Label: "Extreme Overload", Users: 3000, Requests: 2},
		{Name: "connection_limit", Label: "Connection Limit", Users: 5000, Requests: 1},
	}
}

// UnknownScenarioError reports filter names that match no scenario in the
// table. Nothing runs when the filter is invalid.
type UnknownScenarioError struct {
	Invalid []string
	Known   []string
}

func (e *UnknownScenarioError) Error() string {
	return fmt.Sprintf("unknown scenarios %s (known: %s)",
		strings.Join(e.Invalid, ", "), strings.Join(e.Known, ", "))
}

// Filter selects the named scenarios from the table, preserving table
// order regardless of the order names are given in. An empty name list
// selects the whole table.
func Filter(table []Scenario, names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return table, nil
	}

	known := make(map[string]bool, len(table))
	for _, s := range table {
		known[s.Name] = true
	}

	wanted := make(map[string]bool, len(names))
	var invalid []string
	for _, name := range names {
		if !known[name] {
			invalid = append(invalid, name)
			continue
		}
		wanted[name] = true
	}
	if len(invalid) > 0 {
		knownNames := make([]string, 0, len(table))
		for _, s := range table {
			knownNames = append(knownNames, s.Name)
		}
		return nil, &UnknownScenarioError{Invalid: invalid, Known: knownNames}
	}

	selected := make([]Scenario, 0, len(wanted))
	for _, s := range table {
		if wanted[s.Name] {
			selected = append(selected, s)
		}
	}
	return selected, nil
}
