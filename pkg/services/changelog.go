package services

import (
	"sort"
	"strings"

	"github.com/schemascribe/scribe-engine/pkg/models"
)

// SentinelSentence marks an entry the engine generated itself. Lines and
// property values containing it are excluded from parsing so that re-running
// synthesis never re-ingests its own marker as a manual change.
const SentinelSentence = "Code extracted with extended properties header"

// HistoryKeyPrefix is the metadata key prefix that routes an entry to the
// change-log parser instead of the property classifier.
const HistoryKeyPrefix = "changes-"

// PreviousKeyPrefix keys properties holding verbatim previous-change lines
// carried over from earlier headers.
const PreviousKeyPrefix = "previous-change"

// ChangesParseResult holds the outcome of parsing one changes section.
// Context lines satisfied neither the sentinel rule nor the dash/colon
// grammar; they are kept for diagnostics and never surfaced as entries.
type ChangesParseResult struct {
	Entries []models.ChangeEntry
	Context []string
}

// ParseChangesSection applies the per-line change grammar to the lines of a
// "Changes Made" or "Changes Previous" section. Lines without a recognizable
// date inherit one from their neighbors: the most recent date seen scanning
// forward, then (for lines before any dated line) the nearest later entry's
// date, and finally runDate when the whole section is dateless.
func ParseChangesSection(lines []string, runDate string) ChangesParseResult {
	var result ChangesParseResult

	carryDate := ""
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.Contains(line, SentinelSentence) {
			continue
		}

		entry, hasDate, ok := classifyChangeLine(line)
		if !ok {
			result.Context = append(result.Context, line)
			continue
		}
		if hasDate {
			carryDate = entry.Date
		} else {
			entry.Date = carryDate
		}
		result.Entries = append(result.Entries, entry)
	}

	// Backward fill: lines before the first dated line take the nearest
	// later entry's date.
	carryDate = ""
	for i := len(result.Entries) - 1; i >= 0; i-- {
		if result.Entries[i].Date != "" {
			carryDate = result.Entries[i].Date
		} else if carryDate != "" {
			result.Entries[i].Date = carryDate
		}
	}
	for i := range result.Entries {
		if result.Entries[i].Date == "" {
			result.Entries[i].Date = runDate
		}
	}

	return result
}

// ParseHistoryProperty parses one changes-prefixed metadata value with the
// same grammar as section lines. Values containing the sentinel sentence are
// skipped, as are values that fail the dash/colon grammar. A value without a
// recognizable date resolves to runDate; a property has no neighboring lines
// to inherit from.
func ParseHistoryProperty(value, runDate string) (models.ChangeEntry, bool) {
	line := strings.TrimSpace(value)
	if line == "" || strings.Contains(line, SentinelSentence) {
		return models.ChangeEntry{}, false
	}

	entry, hasDate, ok := classifyChangeLine(line)
	if !ok {
		return models.ChangeEntry{}, false
	}
	if !hasDate {
		entry.Date = runDate
	}
	return entry, true
}

// classifyChangeLine splits one trimmed line into a ChangeEntry. The line
// must contain both a dash and a colon with a non-empty description after
// the colon; everything after the first dash and before the first colon is
// either "date author" or a bare author, decided by the positional date
// shapes in matchDateField. hasDate reports whether the line carried its own
// date; ok is false for lines that are context only.
func classifyChangeLine(line string) (entry models.ChangeEntry, hasDate bool, ok bool) {
	dashIdx := strings.Index(line, "-")
	if dashIdx == -1 {
		return models.ChangeEntry{}, false, false
	}

	afterDash := line[dashIdx+1:]
	colonIdx := strings.Index(afterDash, ":")
	if colonIdx == -1 {
		return models.ChangeEntry{}, false, false
	}

	beforeColon := strings.TrimSpace(afterDash[:colonIdx])
	description := strings.TrimSpace(afterDash[colonIdx+1:])
	if description == "" {
		return models.ChangeEntry{}, false, false
	}

	if date, ok := matchDateField(beforeColon); ok {
		author := ""
		if spaceIdx := strings.IndexAny(beforeColon, " \t"); spaceIdx != -1 {
			author = strings.TrimSpace(beforeColon[spaceIdx+1:])
		}
		return models.ChangeEntry{Date: date, Author: author, Description: description}, true, true
	}

	return models.ChangeEntry{Author: beforeColon, Description: description}, false, true
}

// matchDateField checks whether beforeColon opens with one of the recognized
// date shapes and returns the canonical YYYY-MM-DD form. Recognized shapes,
// checked positionally rather than with a general date parser:
//
//	YYYY-MM-DD (anything may follow the day)
//	M/D/YYYY, MM/D/YYYY, M/DD/YYYY, MM/DD/YYYY
//
// Anything else (month names included) is not a date here; that matches the
// tolerance of the header formats this engine recovers.
func matchDateField(beforeColon string) (string, bool) {
	field := beforeColon
	if idx := strings.IndexAny(field, " \t"); idx != -1 {
		field = field[:idx]
	}
	if field == "" {
		return "", false
	}

	if isoDate, ok := matchISOPrefix(field); ok {
		return isoDate, true
	}
	return matchSlashDate(field)
}

// matchISOPrefix matches a YYYY-MM-DD prefix by fixed positions.
func matchISOPrefix(field string) (string, bool) {
	if len(field) < 10 {
		return "", false
	}
	for _, pos := range []int{0, 1, 2, 3, 5, 6, 8, 9} {
		if !isDigit(field[pos]) {
			return "", false
		}
	}
	if field[4] != '-' || field[7] != '-' {
		return "", false
	}
	return field[:10], true
}

// matchSlashDate matches M/D/YYYY with one- or two-digit month and day and
// zero-pads both into canonical form.
func matchSlashDate(field string) (string, bool) {
	parts := strings.Split(field, "/")
	if len(parts) != 3 {
		return "", false
	}
	month, day, year := parts[0], parts[1], parts[2]
	if !isDigits(month, 1, 2) || !isDigits(day, 1, 2) || !isDigits(year, 4, 4) {
		return "", false
	}
	if len(month) == 1 {
		month = "0" + month
	}
	if len(day) == 1 {
		day = "0" + day
	}
	return year + "-" + month + "-" + day, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDigits(s string, minLen, maxLen int) bool {
	if len(s) < minLen || len(s) > maxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// MergeChangeEntries concatenates entry groups in discovery order and drops
// duplicates. Two entries are duplicates when author and description match;
// the date is ignored because the same logical change may carry slightly
// different dates across sources. The first occurrence wins.
func MergeChangeEntries(groups ...[]models.ChangeEntry) []models.ChangeEntry {
	seen := make(map[string]struct{})
	var merged []models.ChangeEntry
	for _, group := range groups {
		for _, entry := range group {
			key := entry.DedupKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, entry)
		}
	}
	return merged
}

// SortChangeEntries orders entries by resolved date descending. Entries with
// equal dates keep their discovery order; canonical YYYY-MM-DD dates compare
// correctly as strings.
func SortChangeEntries(entries []models.ChangeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
}
