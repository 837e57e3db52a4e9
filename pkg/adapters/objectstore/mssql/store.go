package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"go.uber.org/zap"

	"github.com/schemascribe/scribe-engine/pkg/adapters/objectstore"
	"github.com/schemascribe/scribe-engine/pkg/apperrors"
	"github.com/schemascribe/scribe-engine/pkg/models"
)

// Store implements objectstore.ObjectStore against SQL Server. Definitions
// come from OBJECT_DEFINITION, metadata from extended properties.
type Store struct {
	config *Config
	db     *sql.DB
	logger *zap.Logger
}

// NewStore opens a SQL Server connection and verifies it.
// If logger is nil, a no-op logger is used.
func NewStore(ctx context.Context, cfg *Config, logger *zap.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := openConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connection test failed: %w", err)
	}

	return &Store{config: cfg, db: db, logger: logger.Named("mssql-store")}, nil
}

func openConnection(cfg *Config) (*sql.DB, error) {
	query := url.Values{}
	query.Add("database", cfg.Database)

	if cfg.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}
	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}
	if cfg.ConnectionTimeout > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectionTimeout))
	}

	connStr := fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(cfg.Username),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		query.Encode(),
	)

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}
	return db, nil
}

// Resolve looks up an object by name, optionally constrained to a schema.
func (s *Store) Resolve(ctx context.Context, containerHint, name string) (*models.ObjectIdentity, error) {
	query := `
	SET NOCOUNT ON;
	SELECT TOP (1)
	    SCHEMA_NAME(o.schema_id) AS schema_name,
	    o.name AS object_name,
	    RTRIM(o.type) AS object_type
	FROM sys.objects o
	WHERE o.name = @name
	  AND o.is_ms_shipped = 0
	  AND (@schema = N'' OR SCHEMA_NAME(o.schema_id) = @schema)
	ORDER BY o.object_id
	`

	var schemaName, objectName, objectType string
	err := s.db.QueryRowContext(ctx, query,
		sql.Named("name", name),
		sql.Named("schema", containerHint),
	).Scan(&schemaName, &objectName, &objectType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query object: %w", err)
	}

	return &models.ObjectIdentity{
		Container: schemaName,
		Name:      objectName,
		Kind:      kindFromType(objectType),
	}, nil
}

// kindFromType maps a sys.objects type code to an ObjectKind.
func kindFromType(objectType string) models.ObjectKind {
	switch strings.ToUpper(strings.TrimSpace(objectType)) {
	case "P", "PC", "FN", "IF", "TF", "FS", "FT":
		return models.KindRoutine
	case "V":
		return models.KindView
	case "TR", "TA":
		return models.KindTrigger
	case "U":
		return models.KindTable
	case "SO":
		return models.KindSequence
	default:
		return models.KindOther
	}
}

// GetDefinition fetches the object's module text and creation date.
func (s *Store) GetDefinition(ctx context.Context, identity *models.ObjectIdentity) (*models.ObjectDefinition, error) {
	query := `
	SET NOCOUNT ON;
	SELECT
	    ISNULL(OBJECT_DEFINITION(o.object_id), N'') AS definition_text,
	    o.create_date
	FROM sys.objects o
	WHERE SCHEMA_NAME(o.schema_id) = @schema AND o.name = @name
	`

	var definition models.ObjectDefinition
	var text string
	var createDate sql.NullTime
	err := s.db.QueryRowContext(ctx, query,
		sql.Named("schema", identity.Container),
		sql.Named("name", identity.Name),
	).Scan(&text, &createDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query definition: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrDefinitionUnavailable
	}

	definition.Identity = *identity
	definition.Text = text
	if createDate.Valid {
		t := createDate.Time
		definition.CreatedAt = &t
	}
	return &definition, nil
}

// ListMetadata returns the object-level extended properties.
func (s *Store) ListMetadata(ctx context.Context, identity *models.ObjectIdentity) ([]models.MetadataEntry, error) {
	query := `
	SET NOCOUNT ON;
	SELECT ep.name, ISNULL(CONVERT(NVARCHAR(MAX), ep.value), N'')
	FROM sys.extended_properties ep
	WHERE ep.class = 1
	  AND ep.minor_id = 0
	  AND ep.major_id = OBJECT_ID(QUOTENAME(@schema) + N'.' + QUOTENAME(@name))
	ORDER BY ep.name
	`

	rows, err := s.db.QueryContext(ctx, query,
		sql.Named("schema", identity.Container),
		sql.Named("name", identity.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("query extended properties: %w", err)
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

// addPropertyBatch guards each sp_addextendedproperty call with an existence
// check in the same batch, so re-applying an identical entry is a no-op. The
// property levels are derived from the live sys.objects row rather than the
// resolved kind: schema-level objects collapse procedures and functions
// together, while triggers must be addressed as a level2 TRIGGER under their
// parent TABLE (sp_addextendedproperty rejects a trigger at level1).
const addPropertyBatch = `
SET NOCOUNT ON;
DECLARE @object_id int = OBJECT_ID(QUOTENAME(@schema) + N'.' + QUOTENAME(@name));
DECLARE @type sysname =
    (SELECT RTRIM(o.type) FROM sys.objects o WHERE o.object_id = @object_id);
IF EXISTS (
    SELECT 1 FROM sys.extended_properties ep
    WHERE ep.class = 1 AND ep.minor_id = 0 AND ep.major_id = @object_id
      AND ep.name = @key
      AND CONVERT(NVARCHAR(MAX), ep.value) = @value
)
    RETURN;
IF @type IN ('TR', 'TA')
BEGIN
    DECLARE @parent sysname =
        (SELECT p.name FROM sys.objects o
         JOIN sys.objects p ON p.object_id = o.parent_object_id
         WHERE o.object_id = @object_id);
    EXEC sp_addextendedproperty
        @name = @key, @value = @value,
        @level0type = N'SCHEMA', @level0name = @schema,
        @level1type = N'TABLE', @level1name = @parent,
        @level2type = N'TRIGGER', @level2name = @name;
END
ELSE
BEGIN
    DECLARE @l1type sysname =
        CASE @type
            WHEN 'P'  THEN N'PROCEDURE'
            WHEN 'PC' THEN N'PROCEDURE'
            WHEN 'V'  THEN N'VIEW'
            WHEN 'U'  THEN N'TABLE'
            WHEN 'SO' THEN N'SEQUENCE'
            ELSE N'FUNCTION'
        END;
    EXEC sp_addextendedproperty
        @name = @key, @value = @value,
        @level0type = N'SCHEMA', @level0name = @schema,
        @level1type = @l1type, @level1name = @name;
END
`

// WriteMetadata adds extended properties via sp_addextendedproperty, one
// guarded batch per entry.
func (s *Store) WriteMetadata(ctx context.Context, identity *models.ObjectIdentity, entries []models.MetadataEntry) error {
	for _, entry := range entries {
		_, err := s.db.ExecContext(ctx, addPropertyBatch,
			sql.Named("schema", identity.Container),
			sql.Named("name", identity.Name),
			sql.Named("key", entry.Key),
			sql.Named("value", entry.Value),
		)
		if err != nil {
			return fmt.Errorf("add extended property %q: %w", entry.Key, err)
		}
		s.logger.Debug("Added extended property",
			zap.String("object", identity.QualifiedName()),
			zap.String("key", entry.Key))
	}

	return nil
}

// Name identifies this store in synthesized headers.
func (s *Store) Name() string {
	return fmt.Sprintf("%s (sqlserver)", s.config.Database)
}

// CreateOrReplaceModifier returns the T-SQL idempotent-creation keywords.
func (s *Store) CreateOrReplaceModifier() string {
	return "OR ALTER"
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ objectstore.ObjectStore = (*Store)(nil)
