package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/schemascribe/scribe-engine/pkg/models"
	enginesql "github.com/schemascribe/scribe-engine/pkg/sql"
)

const (
	headerWidth     = 98
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// SynthesisInput carries everything the header synthesizer needs for one
// object. Entries must already be merged and sorted; PreviousLines are
// verbatim lines from earlier headers and prior previous-change properties.
type SynthesisInput struct {
	Identity      models.ObjectIdentity
	Definition    *models.ObjectDefinition
	Sections      models.DocumentationSections
	Entries       []models.ChangeEntry
	PreviousLines []string
	StoreName     string
	ActingUser    string
	// Modifier is the store dialect's create-or-replace keyword pair,
	// e.g. "OR ALTER" for SQL Server or "OR REPLACE" for Postgres.
	Modifier string
	Now      time.Time
}

// SynthesizeHeader renders the canonical documentation header and the final
// idempotent body. The pre-creation-clause prefix of the original definition
// (typically an earlier generated header) is discarded and replaced; the
// text from the creation keyword onward is preserved apart from the
// create-or-replace normalization.
func SynthesizeHeader(in SynthesisInput) (header string, body string, err error) {
	clause, err := enginesql.RewriteIdempotentCreation(in.Definition.Text, in.Modifier)
	if err != nil {
		return "", "", fmt.Errorf("rewrite creation clause for %s: %w", in.Identity.QualifiedName(), err)
	}

	header = renderHeader(in)
	body = header + "\n" + clause
	return header, body, nil
}

func renderHeader(in SynthesisInput) string {
	var sb strings.Builder
	rule := "    " + strings.Repeat("-", headerWidth-8)

	sb.WriteString("/" + strings.Repeat("*", headerWidth-1) + "\n")

	// Title block.
	fmt.Fprintf(&sb, "    Object:    %s %s\n", in.Identity.Kind.DisplayName(), in.Identity.QualifiedName())
	fmt.Fprintf(&sb, "    Container: %s\n", in.Identity.Container)
	fmt.Fprintf(&sb, "    Store:     %s\n", in.StoreName)
	sb.WriteString(rule + "\n")

	// Metadata block.
	created := "(unknown)"
	if in.Definition.CreatedAt != nil {
		created = in.Definition.CreatedAt.Format(timestampLayout)
	}
	fmt.Fprintf(&sb, "    Created:   %s\n", created)
	fmt.Fprintf(&sb, "    Modified:  %s\n", in.Now.Format(timestampLayout))
	fmt.Fprintf(&sb, "    User:      %s\n", in.ActingUser)

	// Documentation sections, fixed order, empty buffers omitted.
	writeSection(&sb, rule, "Meta", in.Sections.Meta)
	writeSection(&sb, rule, "Code Review", in.Sections.CodeReview)
	writeSection(&sb, rule, "Version", in.Sections.Version)
	writeSection(&sb, rule, "Release Notes", in.Sections.ReleaseNotes)
	writeSection(&sb, rule, "Other", in.Sections.Other)

	if lines := dedupLines(in.PreviousLines); len(lines) > 0 {
		sb.WriteString(rule + "\n")
		sb.WriteString("    " + enginesql.ChangesPreviousMarker + "\n")
		for _, line := range lines {
			sb.WriteString("      " + line + "\n")
		}
	}

	sb.WriteString(rule + "\n")
	sb.WriteString("    " + enginesql.ChangesMadeMarker + "\n")
	sentinel := models.ChangeEntry{
		Date:        in.Now.Format(dateLayout),
		Author:      in.ActingUser,
		Description: SentinelSentence,
	}
	sb.WriteString("      - " + sentinel.RenderLine() + "\n")
	for _, entry := range in.Entries {
		sb.WriteString("      - " + entry.RenderLine() + "\n")
	}

	sb.WriteString(strings.Repeat("*", headerWidth-1) + "/\n")
	return sb.String()
}

// writeSection renders one non-empty documentation buffer under its heading.
func writeSection(sb *strings.Builder, rule, heading string, lines []models.SectionLine) {
	if len(lines) == 0 {
		return
	}
	sb.WriteString(rule + "\n")
	sb.WriteString("    " + heading + ":\n")
	for _, line := range lines {
		fmt.Fprintf(sb, "      %s: %s\n", line.Label, line.Value)
	}
}

// dedupLines drops exact-text duplicates, keeping first occurrence.
func dedupLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	var out []string
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
