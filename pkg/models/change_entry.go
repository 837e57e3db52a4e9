package models

import "strings"

// ChangeEntry is one parsed change-history record. Date is always in
// canonical YYYY-MM-DD form by the time an entry is compared or sorted;
// Description is never empty (lines that trim to an empty description are
// discarded during parsing, not stored with empty fields).
type ChangeEntry struct {
	Date        string `json:"date"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// DedupKey identifies a logical change. Date is deliberately excluded:
// the same change may be recorded with slightly different dates across
// the embedded-comment and metadata-property sources.
func (e ChangeEntry) DedupKey() string {
	return e.Author + "\x00" + e.Description
}

// RenderLine renders the entry as a changelog line without the leading dash.
// The space before the colon is omitted when the author is empty.
func (e ChangeEntry) RenderLine() string {
	var sb strings.Builder
	sb.WriteString(e.Date)
	if e.Author != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Author)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Description)
	return sb.String()
}
