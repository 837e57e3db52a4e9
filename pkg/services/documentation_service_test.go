package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schemascribe/scribe-engine/pkg/apperrors"
	"github.com/schemascribe/scribe-engine/pkg/models"
)

// fakeObjectStore is an in-memory ObjectStore for service tests. Writes
// append to Metadata so a second synthesis run sees the applied snapshot.
type fakeObjectStore struct {
	Identity   *models.ObjectIdentity
	Definition *models.ObjectDefinition
	Metadata   []models.MetadataEntry

	ResolveErr  error
	WriteErr    error
	WriteCalls  int
	LastWritten []models.MetadataEntry
}

func (f *fakeObjectStore) Resolve(_ context.Context, _, name string) (*models.ObjectIdentity, error) {
	if f.ResolveErr != nil {
		return nil, f.ResolveErr
	}
	if f.Identity == nil || f.Identity.Name != name {
		return nil, apperrors.ErrObjectNotFound
	}
	return f.Identity, nil
}

func (f *fakeObjectStore) GetDefinition(_ context.Context, _ *models.ObjectIdentity) (*models.ObjectDefinition, error) {
	if f.Definition == nil {
		return nil, apperrors.ErrDefinitionUnavailable
	}
	return f.Definition, nil
}

func (f *fakeObjectStore) ListMetadata(_ context.Context, _ *models.ObjectIdentity) ([]models.MetadataEntry, error) {
	return f.Metadata, nil
}

func (f *fakeObjectStore) WriteMetadata(_ context.Context, _ *models.ObjectIdentity, entries []models.MetadataEntry) error {
	f.WriteCalls++
	f.LastWritten = entries
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.Metadata = append(f.Metadata, entries...)
	return nil
}

func (f *fakeObjectStore) Name() string                    { return "testdb (fake)" }
func (f *fakeObjectStore) CreateOrReplaceModifier() string { return "OR ALTER" }
func (f *fakeObjectStore) Close() error                    { return nil }

func newFakeStore() *fakeObjectStore {
	return &fakeObjectStore{
		Identity: &models.ObjectIdentity{
			Container: "dbo",
			Name:      "usp_LoadAccounts",
			Kind:      models.KindRoutine,
		},
		Definition: &models.ObjectDefinition{
			Text: "/**********\n" +
				"    Changes Made:\n" +
				"      - 2024-03-04 Bob: Fixed rounding in totals\n" +
				"      - Alice: Added retry on deadlock\n" +
				"**********/\n" +
				"CREATE PROCEDURE dbo.usp_LoadAccounts AS SELECT 1",
		},
	}
}

func TestSynthesizeDocumentation_Preview(t *testing.T) {
	store := newFakeStore()
	svc := NewDocumentationService(store, "scribe-engine", zap.NewNop())

	result, err := svc.SynthesizeDocumentation(context.Background(), "dbo", "usp_LoadAccounts", false)
	require.NoError(t, err)

	assert.Contains(t, result.Header, "Object:    PROCEDURE dbo.usp_LoadAccounts")
	assert.Contains(t, result.Header, "- 2024-03-04 Bob: Fixed rounding in totals")
	assert.Contains(t, result.Header, "Alice: Added retry on deadlock")
	assert.Contains(t, result.Body, "CREATE OR ALTER PROCEDURE dbo.usp_LoadAccounts AS SELECT 1")

	// Sentinel plus two recovered entries.
	assert.Len(t, result.Writes, 3)
	assert.False(t, result.WritesApplied)
	assert.Equal(t, 0, store.WriteCalls, "preview must not touch the store")
}

func TestSynthesizeDocumentation_Apply(t *testing.T) {
	store := newFakeStore()
	svc := NewDocumentationService(store, "scribe-engine", zap.NewNop())

	result, err := svc.SynthesizeDocumentation(context.Background(), "dbo", "usp_LoadAccounts", true)
	require.NoError(t, err)

	assert.True(t, result.WritesApplied)
	assert.Equal(t, 1, store.WriteCalls)
	assert.Len(t, store.Metadata, 3)
}

func TestSynthesizeDocumentation_SecondRunWritesNothing(t *testing.T) {
	store := newFakeStore()
	svc := NewDocumentationService(store, "scribe-engine", zap.NewNop())

	first, err := svc.SynthesizeDocumentation(context.Background(), "dbo", "usp_LoadAccounts", true)
	require.NoError(t, err)
	require.True(t, first.WritesApplied)

	// The store now holds the applied snapshot; the definition is unchanged.
	second, err := svc.SynthesizeDocumentation(context.Background(), "dbo", "usp_LoadAccounts", true)
	require.NoError(t, err)

	assert.Empty(t, second.Writes, "second run over applied state must be a no-op")
	assert.False(t, second.WritesApplied)
	assert.Equal(t, 1, store.WriteCalls, "no second write call for an empty set")
}

func TestSynthesizeDocumentation_DedupAcrossSources(t *testing.T) {
	store := newFakeStore()
	// The property copy of Bob's change carries a drifted date.
	store.Metadata = []models.MetadataEntry{
		{Key: "changes-20240306-ab12cd34", Value: "- 2024-03-06 Bob: Fixed rounding in totals"},
		{Key: "changes-20240201-99aa88bb", Value: "- 2024-02-01 Carol: Adjusted index hints"},
	}
	svc := NewDocumentationService(store, "scribe-engine", zap.NewNop())

	result, err := svc.SynthesizeDocumentation(context.Background(), "dbo", "usp_LoadAccounts", false)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(result.Header, "Fixed rounding in totals"),
		"comment and property copies of one change merge to a single line")
	assert.Contains(t, result.Header, "Carol: Adjusted index hints")

	// Pending: sentinel + Alice's comment-only entry. Bob's change is
	// already recorded (under its drifted date) and must not re-insert.
	require.Len(t, result.Writes, 2)
	for _, w := range result.Writes {
		assert.NotContains(t, w.Value, "Fixed rounding in totals")
	}
}

func TestSynthesizeDocumentation_EntriesSortedNewestFirst(t *testing.T) {
	store := newFakeStore()
	store.Metadata = []models.MetadataEntry{
		{Key: "changes-20250101-11aa22bb", Value: "- 2025-01-01 Carol: Newest change"},
	}
	svc := NewDocumentationService(store, "scribe-engine", zap.NewNop())

	result, err := svc.SynthesizeDocumentation(context.Background(), "dbo", "usp_LoadAccounts", false)
	require.NoError(t, err)

	newest := strings.Index(result.Header, "Newest change")
	older := strings.Index(result.Header, "Fixed rounding in totals")
	require.NotEqual(t, -1, newest)
	require.NotEqual(t, -1, older)
	assert.Less(t, newest, older)
}

func TestSynthesizeDocumentation_PropertySectionsRendered(t *testing.T) {
	store := newFakeStore()
	store.Metadata = []models.MetadataEntry{
		{Key: "meta-owner", Value: "platform team"},
		{Key: "version", Value: "3.2"},
	}
	svc := NewDocumentationService(store, "scribe-engine", zap.NewNop())

	result, err := svc.SynthesizeDocumentation(context.Background(), "dbo", "usp_LoadAccounts", false)
	require.NoError(t, err)

	assert.Contains(t, result.Header, "Owner: platform team")
	assert.Contains(t, result.Header, "Version:")
}

func TestSynthesizeDocumentation_ObjectNotFound(t *testing.T) {
	store := newFakeStore()
	svc := NewDocumentationService(store, "scribe-engine", zap.NewNop())

	_, err := svc.SynthesizeDocumentation(context.Background(), "dbo", "no_such_object", false)
	assert.ErrorIs(t, err, apperrors.ErrObjectNotFound)
}

func TestSynthesizeDocumentation_EmptyDefinition(t *testing.T) {
	store := newFakeStore()
	store.Definition = &models.ObjectDefinition{Text: "   \n"}
	svc := NewDocumentationService(store, "scribe-engine", zap.NewNop())

	_, err := svc.SynthesizeDocumentation(context.Background(), "dbo", "usp_LoadAccounts", false)
	assert.ErrorIs(t, err, apperrors.ErrDefinitionUnavailable)
}

func TestSynthesizeDocumentation_NoCreationClause(t *testing.T) {
	store := newFakeStore()
	store.Definition = &models.ObjectDefinition{Text: "SELECT 1"}
	svc := NewDocumentationService(store, "scribe-engine", zap.NewNop())

	_, err := svc.SynthesizeDocumentation(context.Background(), "dbo", "usp_LoadAccounts", false)
	assert.ErrorIs(t, err, apperrors.ErrCreationClauseNotFound)
}

func TestSynthesizeDocumentation_WriteFailure(t *testing.T) {
	store := newFakeStore()
	store.WriteErr = errors.New("connection reset")
	svc := NewDocumentationService(store, "scribe-engine", zap.NewNop())

	_, err := svc.SynthesizeDocumentation(context.Background(), "dbo", "usp_LoadAccounts", true)
	assert.ErrorIs(t, err, apperrors.ErrStoreWriteFailed)
}
