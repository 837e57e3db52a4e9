package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/schemascribe/scribe-engine/pkg/adapters/objectstore"
	"github.com/schemascribe/scribe-engine/pkg/apperrors"
	"github.com/schemascribe/scribe-engine/pkg/models"
	enginesql "github.com/schemascribe/scribe-engine/pkg/sql"
)

// DocumentationService regenerates an object's documentation header and
// changelog from its definition text and attached metadata.
type DocumentationService interface {
	// SynthesizeDocumentation runs the full pipeline for one object:
	// fetch, scan, parse, classify, synthesize, reconcile. When applyWrites
	// is true the computed write-set is persisted; otherwise the caller
	// gets a preview and may apply the writes itself. On a typed error
	// (object not found, definition unavailable, creation clause not
	// found, store write failed) no store writes occur and no partial
	// result is returned.
	SynthesizeDocumentation(ctx context.Context, containerHint, name string, applyWrites bool) (*models.SynthesisResult, error)
}

type documentationService struct {
	store      objectstore.ObjectStore
	actingUser string
	now        func() time.Time
	logger     *zap.Logger
}

// NewDocumentationService creates a documentation service bound to one
// object store. actingUser appears in synthesized headers and sentinel
// entries.
func NewDocumentationService(store objectstore.ObjectStore, actingUser string, logger *zap.Logger) DocumentationService {
	return &documentationService{
		store:      store,
		actingUser: actingUser,
		now:        time.Now,
		logger:     logger.Named("documentation"),
	}
}

var _ DocumentationService = (*documentationService)(nil)

func (s *documentationService) SynthesizeDocumentation(ctx context.Context, containerHint, name string, applyWrites bool) (*models.SynthesisResult, error) {
	identity, err := s.store.Resolve(ctx, containerHint, name)
	if err != nil {
		return nil, fmt.Errorf("resolve %s.%s: %w", containerHint, name, err)
	}

	definition, err := s.store.GetDefinition(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("get definition for %s: %w", identity.QualifiedName(), err)
	}
	if strings.TrimSpace(definition.Text) == "" {
		return nil, fmt.Errorf("definition for %s: %w", identity.QualifiedName(), apperrors.ErrDefinitionUnavailable)
	}

	metadata, err := s.store.ListMetadata(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("list metadata for %s: %w", identity.QualifiedName(), err)
	}

	now := s.now()
	runDate := now.Format(dateLayout)

	// Recover history embedded in an existing header, if any.
	var commentEntries []models.ChangeEntry
	var previousLines []string
	if sections, found := enginesql.ExtractHistorySections(definition.Text); found {
		parsed := ParseChangesSection(sections.Made, runDate)
		commentEntries = parsed.Entries
		previousLines = append(previousLines, sections.Previous...)
		if len(parsed.Context) > 0 {
			s.logger.Debug("Unparseable change lines kept as context only",
				zap.String("object", identity.QualifiedName()),
				zap.Int("lines", len(parsed.Context)))
		}
	}

	// Partition metadata: history properties feed the change-log parser,
	// previous-change properties feed the verbatim pool, the rest is
	// classified into documentation sections.
	var propertyEntries []models.ChangeEntry
	for _, entry := range metadata {
		lowerKey := strings.ToLower(entry.Key)
		switch {
		case strings.HasPrefix(lowerKey, HistoryKeyPrefix):
			if parsed, ok := ParseHistoryProperty(entry.Value, runDate); ok {
				propertyEntries = append(propertyEntries, parsed)
			}
		case strings.HasPrefix(lowerKey, PreviousKeyPrefix):
			previousLines = append(previousLines, entry.Value)
		}
	}
	sections := ClassifyProperties(metadata)

	merged := MergeChangeEntries(commentEntries, propertyEntries)
	SortChangeEntries(merged)

	header, body, err := SynthesizeHeader(SynthesisInput{
		Identity:      *identity,
		Definition:    definition,
		Sections:      sections,
		Entries:       merged,
		PreviousLines: previousLines,
		StoreName:     s.store.Name(),
		ActingUser:    s.actingUser,
		Modifier:      s.store.CreateOrReplaceModifier(),
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	writes := ReconcileWrites(now, merged, previousLines, metadata)

	result := &models.SynthesisResult{
		Identity: *identity,
		Header:   header,
		Body:     body,
		Writes:   writes,
	}

	if applyWrites && len(writes) > 0 {
		if err := s.store.WriteMetadata(ctx, identity, writes); err != nil {
			return nil, fmt.Errorf("write metadata for %s: %w: %v",
				identity.QualifiedName(), apperrors.ErrStoreWriteFailed, err)
		}
		result.WritesApplied = true
	}

	s.logger.Info("Synthesized documentation",
		zap.String("object", identity.QualifiedName()),
		zap.String("kind", string(identity.Kind)),
		zap.Int("change_entries", len(merged)),
		zap.Int("previous_lines", len(previousLines)),
		zap.Int("writes", len(writes)),
		zap.Bool("applied", result.WritesApplied))

	return result, nil
}
