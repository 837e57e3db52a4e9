package services

import (
	"strings"

	"github.com/schemascribe/scribe-engine/pkg/models"
)

// nullPlaceholder substitutes for a missing value so every rendered section
// line keeps the "Label: Value" shape.
const nullPlaceholder = "(null)"

// section prefixes in priority order. RELEASE_NOTES is listed uppercase
// first, preserving the original convention; all matching is
// case-insensitive regardless.
const (
	metaPrefix           = "meta"
	codeReviewPrefix     = "code-review"
	codeReviewAltPrefix  = "code_review"
	versionPrefix        = "version"
	releaseNotesPrefix   = "RELEASE_NOTES"
	releaseNotesLCPrefix = "release_notes"
)

// ClassifyProperties groups metadata entries into documentation sections by
// case-insensitive key prefix. Entries under the history prefix ("changes-")
// and the previous-change prefix belong to the change-log pipeline and must
// be partitioned out before classification; they are skipped here as a
// guard. Everything unmatched lands in Other.
func ClassifyProperties(entries []models.MetadataEntry) models.DocumentationSections {
	var sections models.DocumentationSections

	for _, entry := range entries {
		lowerKey := strings.ToLower(entry.Key)

		switch {
		case strings.HasPrefix(lowerKey, strings.ToLower(HistoryKeyPrefix)):
			continue
		case strings.HasPrefix(lowerKey, strings.ToLower(PreviousKeyPrefix)):
			continue
		case strings.HasPrefix(lowerKey, metaPrefix):
			sections.Meta = append(sections.Meta, sectionLine(entry, metaPrefix))
		case strings.HasPrefix(lowerKey, codeReviewPrefix):
			sections.CodeReview = append(sections.CodeReview, sectionLine(entry, codeReviewPrefix))
		case strings.HasPrefix(lowerKey, codeReviewAltPrefix):
			sections.CodeReview = append(sections.CodeReview, sectionLine(entry, codeReviewAltPrefix))
		case strings.HasPrefix(lowerKey, versionPrefix):
			sections.Version = append(sections.Version, sectionLine(entry, versionPrefix))
		case strings.HasPrefix(lowerKey, strings.ToLower(releaseNotesPrefix)):
			sections.ReleaseNotes = append(sections.ReleaseNotes, sectionLine(entry, releaseNotesLCPrefix))
		default:
			sections.Other = append(sections.Other, models.SectionLine{
				Label: sectionLabel(entry.Key),
				Value: valueOrPlaceholder(entry.Value),
			})
		}
	}

	return sections
}

// sectionLine builds a section line from an entry whose key matched prefix.
func sectionLine(entry models.MetadataEntry, prefix string) models.SectionLine {
	stripped := entry.Key[len(prefix):]
	return models.SectionLine{
		Label: sectionLabel(stripped),
		Value: valueOrPlaceholder(entry.Value),
	}
}

// sectionLabel turns a stripped key into a display label: underscores and
// hyphens become spaces, the first letter is capitalized and the rest
// lower-cased.
func sectionLabel(stripped string) string {
	label := strings.NewReplacer("_", " ", "-", " ").Replace(stripped)
	label = strings.TrimSpace(label)
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + strings.ToLower(label[1:])
}

func valueOrPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return nullPlaceholder
	}
	return value
}
