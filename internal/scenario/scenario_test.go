package scenario

import (
	"errors"
	"testing"
)

func names(scenarios []Scenario) []string {
	out := make([]string, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.Name
	}
	return out
}

func TestFilterSelectsAllByDefault(t *testing.T) {
	table := DefaultTable()
	selected, err := Filter(table, nil)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(selected) != len(table) {
		t.Errorf("selected %d scenarios, want %d", len(selected), len(table))
	}
}

func TestFilterPreservesTableOrder(t *testing.T) {
	// Requested in reverse; selection must still follow the table.
	selected, err := Filter(DefaultTable(), []string{"peak", "medium", "light"})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	got := names(selected)
	want := []string{"light", "medium", "peak"}
	if len(got) != len(want) {
		t.Fatalf("selected %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("selected %v, want %v", got, want)
		}
	}
}

func TestFilterUnknownScenario(t *testing.T) {
	_, err := Filter(DefaultTable(), []string{"light", "bogus", "nope"})
	var unknown *UnknownScenarioError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want UnknownScenarioError", err)
	}
	if len(unknown.Invalid) != 2 {
		t.Errorf("invalid = %v, want [bogus nope]", unknown.Invalid)
	}
	if len(unknown.Known) != len(DefaultTable()) {
		t.Errorf("known lists %d names, want %d", len(unknown.Known), len(DefaultTable()))
	}
}

func TestScenarioKey(t *testing.T) {
	if got := (Scenario{Name: "light", Label: "Light Load"}).Key(); got != "Light Load" {
		t.Errorf("key = %q, want label", got)
	}
	if got := (Scenario{Name: "light"}).Key(); got != "light" {
		t.Errorf("key = %q, want name", got)
	}
}

func TestDefaultTableEscalates(t *testing.T) {
	table := DefaultTable()
	if len(table) != 11 {
		t.Fatalf("table has %d scenarios, want 11", len(table))
	}
	for i := 1; i < len(table); i++ {
		if table[i].Users <= table[i-1].Users {
			t.Errorf("users do not escalate at %q: %d after %d",
				table[i].Name, table[i].Users, table[i-1].Users)
		}
	}
	for _, s := range table {
		if s.Users <= 0 || s.Requests <= 0 {
			t.Errorf("scenario %q has non-positive load %dx%d", s.Name, s.Users, s.Requests)
		}
	}
}
