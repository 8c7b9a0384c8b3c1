package org

import (
	"strings"
	"testing"
)

func TestFlattenDepartmentsThreeLevels(t *testing.T) {
	deps := []Department{
		{ID: "d3", Name: "Payroll Ops", ParentID: "d2"},
		{ID: "d1", Name: "Operations"},
		{ID: "d2", Name: "Finance", ParentID: "d1"},
		{ID: "d4", Name: "Facilities", ParentID: "d1"},
	}

	options, err := FlattenDepartments(deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(options))
	}

	// Parent before child, depth-first, siblings alphabetical.
	wantOrder := []string{"d1", "d4", "d2", "d3"}
	wantLevel := []int{0, 1, 1, 2}
	for i, opt := range options {
		if opt.ID != wantOrder[i] {
			t.Fatalf("position %d: expected %s, got %s", i, wantOrder[i], opt.ID)
		}
		if opt.Level != wantLevel[i] {
			t.Fatalf("position %d: expected level %d, got %d", i, wantLevel[i], opt.Level)
		}
	}

	if options[3].DisplayName != strings.Repeat("— ", 2)+"Payroll Ops" {
		t.Fatalf("unexpected display name %q", options[3].DisplayName)
	}
}

func TestFlattenDepartmentsEmpty(t *testing.T) {
	options, err := FlattenDepartments(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(options) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(options))
	}
}

func TestFlattenDepartmentsUnknownParentBecomesRoot(t *testing.T) {
	deps := []Department{
		{ID: "d1", Name: "Orphaned", ParentID: "gone"},
		{ID: "d2", Name: "Head Office"},
	}

	options, err := FlattenDepartments(deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(options))
	}
	for _, opt := range options {
		if opt.Level != 0 {
			t.Fatalf("expected all roots, got level %d for %s", opt.Level, opt.ID)
		}
	}
}

func TestFlattenDepartmentsCycleFailsFast(t *testing.T) {
	deps := []Department{
		{ID: "d1", Name: "Alpha", ParentID: "d2"},
		{ID: "d2", Name: "Beta", ParentID: "d1"},
		{ID: "d3", Name: "Root"},
	}

	_, err := FlattenDepartments(deps)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}
