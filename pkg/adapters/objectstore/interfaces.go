package objectstore

import (
	"context"

	"github.com/schemascribe/scribe-engine/pkg/models"
)

// ObjectStore is the engine's only collaborator: it resolves object
// identities, fetches definition text, and reads and writes the key/value
// metadata attached to an object. The engine never constructs executable
// statements itself; each implementation owns its dialect.
//
// Implementations own their connection and must be closed when done. Read
// and write operations must be individually safe for concurrent use; the
// engine holds no cross-invocation state.
type ObjectStore interface {
	// Resolve looks up an object by name within the hinted container.
	// Returns apperrors.ErrObjectNotFound when no object matches.
	Resolve(ctx context.Context, containerHint, name string) (*models.ObjectIdentity, error)

	// GetDefinition fetches the full definition text for a resolved
	// identity. Returns apperrors.ErrDefinitionUnavailable when the object
	// exists but exposes no definition text.
	GetDefinition(ctx context.Context, identity *models.ObjectIdentity) (*models.ObjectDefinition, error)

	// ListMetadata returns every metadata entry attached to the identity.
	// Ordering is stable but unspecified; callers must not rely on it.
	ListMetadata(ctx context.Context, identity *models.ObjectIdentity) ([]models.MetadataEntry, error)

	// WriteMetadata persists entries for the identity. Writing an entry
	// whose key+value already exists is a no-op.
	WriteMetadata(ctx context.Context, identity *models.ObjectIdentity, entries []models.MetadataEntry) error

	// Name identifies the defining store in synthesized headers.
	Name() string

	// CreateOrReplaceModifier returns the dialect keyword pair that makes a
	// creation clause idempotent ("OR ALTER" for SQL Server, "OR REPLACE"
	// for Postgres).
	CreateOrReplaceModifier() string

	// Close releases the store's connection.
	Close() error
}
