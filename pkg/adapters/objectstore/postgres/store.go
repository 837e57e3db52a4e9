package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/schemascribe/scribe-engine/pkg/adapters/objectstore"
	"github.com/schemascribe/scribe-engine/pkg/apperrors"
	"github.com/schemascribe/scribe-engine/pkg/database"
	"github.com/schemascribe/scribe-engine/pkg/models"
)

// Store implements objectstore.ObjectStore against Postgres. Object
// identities and definitions come from pg_catalog; metadata lives in the
// engine-owned scribe_object_properties table because Postgres has no
// native key/value property store per object.
type Store struct {
	db       *database.DB
	database string
	logger   *zap.Logger
}

// NewStore wraps an open connection pool. The scribe_object_properties
// table must exist; run migrations before constructing the store.
func NewStore(db *database.DB, databaseName string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, database: databaseName, logger: logger.Named("postgres-store")}
}

// Resolve searches routines, relations, and triggers for the named object.
// When several objects share the name, the oldest by oid wins.
func (s *Store) Resolve(ctx context.Context, containerHint, name string) (*models.ObjectIdentity, error) {
	query := `
	SELECT nspname, objname, kind FROM (
	    SELECT n.nspname, p.proname AS objname, 'routine' AS kind, p.oid AS ord
	    FROM pg_proc p
	    JOIN pg_namespace n ON n.oid = p.pronamespace
	    WHERE p.proname = $2
	      AND ($1 = '' OR n.nspname = $1)
	      AND n.nspname NOT IN ('pg_catalog', 'information_schema')
	    UNION ALL
	    SELECT n.nspname, c.relname,
	        CASE c.relkind
	            WHEN 'v' THEN 'view'
	            WHEN 'm' THEN 'view'
	            WHEN 'S' THEN 'sequence'
	            WHEN 'r' THEN 'table'
	            WHEN 'p' THEN 'table'
	            ELSE 'other'
	        END,
	        c.oid
	    FROM pg_class c
	    JOIN pg_namespace n ON n.oid = c.relnamespace
	    WHERE c.relname = $2
	      AND ($1 = '' OR n.nspname = $1)
	      AND c.relkind IN ('r', 'p', 'v', 'm', 'S')
	      AND n.nspname NOT IN ('pg_catalog', 'information_schema')
	    UNION ALL
	    SELECT n.nspname, t.tgname, 'trigger', t.oid
	    FROM pg_trigger t
	    JOIN pg_class c ON c.oid = t.tgrelid
	    JOIN pg_namespace n ON n.oid = c.relnamespace
	    WHERE t.tgname = $2
	      AND NOT t.tgisinternal
	      AND ($1 = '' OR n.nspname = $1)
	) candidates
	ORDER BY ord
	LIMIT 1
	`

	var schemaName, objectName, kind string
	err := s.db.QueryRow(ctx, query, containerHint, name).Scan(&schemaName, &objectName, &kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query object: %w", err)
	}

	return &models.ObjectIdentity{
		Container: schemaName,
		Name:      objectName,
		Kind:      models.ObjectKind(kind),
	}, nil
}

// GetDefinition reconstructs the definition text. Routines come from
// pg_get_functiondef (already in CREATE OR REPLACE form), views are wrapped
// in a creation clause around pg_get_viewdef, and triggers come from
// pg_get_triggerdef. Tables and sequences expose no module text here.
func (s *Store) GetDefinition(ctx context.Context, identity *models.ObjectIdentity) (*models.ObjectDefinition, error) {
	var text string
	var err error

	switch identity.Kind {
	case models.KindRoutine:
		query := `
		SELECT pg_get_functiondef(p.oid)
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace
		WHERE n.nspname = $1 AND p.proname = $2
		ORDER BY p.oid
		LIMIT 1
		`
		err = s.db.QueryRow(ctx, query, identity.Container, identity.Name).Scan(&text)
	case models.KindView:
		query := `
		SELECT format(E'CREATE VIEW %I.%I AS\n%s',
		              n.nspname, c.relname, pg_get_viewdef(c.oid, true))
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relname = $2
		`
		err = s.db.QueryRow(ctx, query, identity.Container, identity.Name).Scan(&text)
	case models.KindTrigger:
		query := `
		SELECT pg_get_triggerdef(t.oid, true)
		FROM pg_trigger t
		JOIN pg_class c ON c.oid = t.tgrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND t.tgname = $2
		  AND NOT t.tgisinternal
		ORDER BY t.oid
		LIMIT 1
		`
		err = s.db.QueryRow(ctx, query, identity.Container, identity.Name).Scan(&text)
	default:
		return nil, apperrors.ErrDefinitionUnavailable
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query definition: %w", err)
	}
	if text == "" {
		return nil, apperrors.ErrDefinitionUnavailable
	}

	return &models.ObjectDefinition{
		Identity: *identity,
		Text:     text,
	}, nil
}

// ListMetadata returns every property attached to the identity.
func (s *Store) ListMetadata(ctx context.Context, identity *models.ObjectIdentity) ([]models.MetadataEntry, error) {
	query := `
	SELECT key, value
	FROM scribe_object_properties
	WHERE container = $1 AND object_name = $2
	ORDER BY key
	`

	rows, err := s.db.Query(ctx, query, identity.Container, identity.Name)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	var entries []models.MetadataEntry
	for rows.Next() {
		var entry models.MetadataEntry
		if err := rows.Scan(&entry.Key, &entry.Value); err != nil {
			return nil, fmt.Errorf("scan property row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate property rows: %w", err)
	}

	return entries, nil
}

// WriteMetadata inserts properties, ignoring keys that already exist.
func (s *Store) WriteMetadata(ctx context.Context, identity *models.ObjectIdentity, entries []models.MetadataEntry) error {
	query := `
	INSERT INTO scribe_object_properties (container, object_name, key, value)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (container, object_name, key) DO NOTHING
	`

	for _, entry := range entries {
		if _, err := s.db.Exec(ctx, query, identity.Container, identity.Name, entry.Key, entry.Value); err != nil {
			return fmt.Errorf("insert property %q: %w", entry.Key, err)
		}
		s.logger.Debug("Stored property",
			zap.String("object", identity.QualifiedName()),
			zap.String("key", entry.Key))
	}

	return nil
}

// Name identifies this store in synthesized headers.
func (s *Store) Name() string {
	return fmt.Sprintf("%s (postgres)", s.database)
}

// CreateOrReplaceModifier returns the Postgres idempotent-creation keywords.
func (s *Store) CreateOrReplaceModifier() string {
	return "OR REPLACE"
}

// Close is a no-op; the pool is owned by the caller.
func (s *Store) Close() error {
	return nil
}

var _ objectstore.ObjectStore = (*Store)(nil)
