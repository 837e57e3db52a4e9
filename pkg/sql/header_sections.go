package sql

import "strings"

const (
	// ChangesMadeMarker opens the section holding parsed change-log lines.
	ChangesMadeMarker = "Changes Made:"
	// ChangesPreviousMarker opens the optional section of verbatim lines
	// carried over from earlier headers.
	ChangesPreviousMarker = "Changes Previous:"
)

// HistorySections holds the raw lines recovered from a pre-existing header
// comment. Lines are verbatim (trimmed of trailing whitespace only on the
// right); parsing them into entries is the change-log parser's job.
type HistorySections struct {
	Previous []string
	Made     []string
}

// ExtractHistorySections finds the first top-level comment block containing
// the "Changes Made:" marker and returns the lines of its "Changes Previous:"
// and "Changes Made:" sub-sections. Each sub-section runs until the next
// horizontal-rule line or the end of the block. The boolean is false when no
// block carries the marker.
func ExtractHistorySections(text string) (HistorySections, bool) {
	for _, block := range ScanCommentBlocks(text) {
		if !strings.Contains(block.Text, ChangesMadeMarker) {
			continue
		}
		sections := HistorySections{
			Previous: sectionLines(block.Text, ChangesPreviousMarker),
			Made:     sectionLines(block.Text, ChangesMadeMarker),
		}
		return sections, true
	}
	return HistorySections{}, false
}

// sectionLines returns the non-empty lines between marker and the next
// horizontal rule (or end of block). Nil when the marker is absent.
func sectionLines(blockText, marker string) []string {
	idx := strings.Index(blockText, marker)
	if idx == -1 {
		return nil
	}

	rest := blockText[idx+len(marker):]
	var lines []string
	for _, raw := range strings.Split(rest, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if IsRuleLine(trimmed) {
			break
		}
		lines = append(lines, trimmed)
	}
	return lines
}

// IsRuleLine reports whether a trimmed line is a horizontal-rule section
// delimiter: four or more dashes and nothing else.
func IsRuleLine(trimmed string) bool {
	if len(trimmed) < 4 {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != '-' {
			return false
		}
	}
	return true
}
