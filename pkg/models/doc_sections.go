package models

// SectionLine is one documentation line derived from a metadata key
// stripped of its classifying prefix.
type SectionLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DocumentationSections groups classified metadata entries into the five
// ordered buffers rendered by the header synthesizer. Order within each
// buffer is discovery order; the store's ordering is stable but unspecified,
// so nothing here depends on it for correctness.
type DocumentationSections struct {
	Meta         []SectionLine `json:"meta"`
	CodeReview   []SectionLine `json:"code_review"`
	Version      []SectionLine `json:"version"`
	ReleaseNotes []SectionLine `json:"release_notes"`
	Other        []SectionLine `json:"other"`
}

// IsEmpty reports whether no section holds any line.
func (d DocumentationSections) IsEmpty() bool {
	return len(d.Meta) == 0 && len(d.CodeReview) == 0 && len(d.Version) == 0 &&
		len(d.ReleaseNotes) == 0 && len(d.Other) == 0
}
