package sql

import (
	"reflect"
	"testing"
)

const sampleHeader = `/*****************************************************************************************
    Object:     usp_LoadAccounts
    ------------------------------------------------------------------------------------------
    Changes Previous:
      - 2021-01-05 dana: Initial version
    ------------------------------------------------------------------------------------------
    Changes Made:
      - 2024-03-04 Bob: Fixed rounding in totals
      - Alice: Added retry on deadlock
    ------------------------------------------------------------------------------------------
*****************************************************************************************/
CREATE PROCEDURE dbo.usp_LoadAccounts AS SELECT 1`

func TestExtractHistorySections(t *testing.T) {
	sections, found := ExtractHistorySections(sampleHeader)
	if !found {
		t.Fatal("expected a header block to be found")
	}

	wantPrevious := []string{"- 2021-01-05 dana: Initial version"}
	if !reflect.DeepEqual(sections.Previous, wantPrevious) {
		t.Errorf("previous lines: expected %v, got %v", wantPrevious, sections.Previous)
	}

	wantMade := []string{
		"- 2024-03-04 Bob: Fixed rounding in totals",
		"- Alice: Added retry on deadlock",
	}
	if !reflect.DeepEqual(sections.Made, wantMade) {
		t.Errorf("made lines: expected %v, got %v", wantMade, sections.Made)
	}
}

func TestExtractHistorySections_NoMarker(t *testing.T) {
	inputs := []string{
		"CREATE PROCEDURE dbo.Foo AS SELECT 1",
		"/* just a note */ CREATE VIEW v AS SELECT 1",
		"/* Changes Previous:\n - 2020-01-01 a: b */ SELECT 1",
		"",
	}

	for _, input := range inputs {
		if _, found := ExtractHistorySections(input); found {
			t.Errorf("expected no sections for %q", input)
		}
	}
}

func TestExtractHistorySections_FirstMarkedBlockWins(t *testing.T) {
	input := "/* Changes Made:\n - a: first block */ SELECT 1 /* Changes Made:\n - b: second block */"

	sections, found := ExtractHistorySections(input)
	if !found {
		t.Fatal("expected a header block to be found")
	}
	want := []string{"- a: first block"}
	if !reflect.DeepEqual(sections.Made, want) {
		t.Errorf("expected %v, got %v", want, sections.Made)
	}
}

func TestExtractHistorySections_NoPreviousSection(t *testing.T) {
	input := "/* Changes Made:\n - 2024-01-01 a: only made */ SELECT 1"

	sections, found := ExtractHistorySections(input)
	if !found {
		t.Fatal("expected a header block to be found")
	}
	if sections.Previous != nil {
		t.Errorf("expected nil previous lines, got %v", sections.Previous)
	}
	if len(sections.Made) != 1 {
		t.Errorf("expected 1 made line, got %v", sections.Made)
	}
}

func TestExtractHistorySections_RuleStopsSection(t *testing.T) {
	input := "/* Changes Made:\n - a: kept\n ----\n - b: beyond the rule */ SELECT 1"

	sections, found := ExtractHistorySections(input)
	if !found {
		t.Fatal("expected a header block to be found")
	}
	want := []string{"- a: kept"}
	if !reflect.DeepEqual(sections.Made, want) {
		t.Errorf("expected %v, got %v", want, sections.Made)
	}
}

func TestIsRuleLine(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"----", true},
		{"------------------------------------------", true},
		{"---", false},
		{"", false},
		{"-- comment", false},
		{"----x", false},
	}

	for _, tt := range tests {
		if got := IsRuleLine(tt.input); got != tt.want {
			t.Errorf("IsRuleLine(%q): expected %v, got %v", tt.input, tt.want, got)
		}
	}
}
