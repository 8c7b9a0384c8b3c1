package shared

import (
	"testing"
	"time"
)

func TestValidatorCollectsAndSortsIssues(t *testing.T) {
	v := NewValidator()
	v.Required("name", "", "name required")
	v.Positive("amount", -1, "must be positive")
	v.UUID("sourceId", "not-a-uuid")

	if !v.HasIssues() {
		t.Fatal("expected issues")
	}
	issues := v.Issues()
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(issues))
	}
	if issues[0].Field != "amount" || issues[1].Field != "name" || issues[2].Field != "sourceId" {
		t.Fatalf("issues not sorted by field: %+v", issues)
	}
}

func TestValidatorAcceptsValidInput(t *testing.T) {
	v := NewValidator()
	v.Required("name", "Acme", "name required")
	v.Enum("status", "Approved", []string{"approved", "rejected"}, "unknown status")
	v.UUID("id", "2d37a9bb-4a0e-4a86-9e5a-03a0d9a2f6cc")
	v.NonNegative("break", 0, "must not be negative")

	if v.HasIssues() {
		t.Fatalf("unexpected issues: %+v", v.Issues())
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := NewValidator()
	start := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	v.DateOrder("periodStart", start, "periodEnd", end)

	if len(v.Issues()) != 2 {
		t.Fatalf("expected both fields flagged, got %+v", v.Issues())
	}
}

func TestParseDateFormats(t *testing.T) {
	plain, err := ParseDate("2024-03-15")
	if err != nil {
		t.Fatalf("plain date: %v", err)
	}
	if plain.Day() != 15 {
		t.Fatalf("unexpected day %d", plain.Day())
	}

	rfc, err := ParseDate("2024-03-15T08:30:00Z")
	if err != nil {
		t.Fatalf("rfc3339 date: %v", err)
	}
	if rfc.Hour() != 8 {
		t.Fatalf("unexpected hour %d", rfc.Hour())
	}

	if _, err := ParseDate("15/03/2024"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseClock(t *testing.T) {
	short, err := ParseClock("09:30")
	if err != nil {
		t.Fatalf("HH:MM: %v", err)
	}
	if short.Hour() != 9 || short.Minute() != 30 {
		t.Fatalf("unexpected clock %v", short)
	}

	long, err := ParseClock("17:45:30")
	if err != nil {
		t.Fatalf("HH:MM:SS: %v", err)
	}
	if long.Second() != 30 {
		t.Fatalf("unexpected seconds %d", long.Second())
	}

	if _, err := ParseClock("25:00"); err == nil {
		t.Fatal("expected error for out-of-range hour")
	}
}
