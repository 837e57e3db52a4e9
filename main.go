package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/schemascribe/scribe-engine/pkg/adapters/objectstore"
	"github.com/schemascribe/scribe-engine/pkg/adapters/objectstore/mssql"
	"github.com/schemascribe/scribe-engine/pkg/adapters/objectstore/postgres"
	"github.com/schemascribe/scribe-engine/pkg/apperrors"
	"github.com/schemascribe/scribe-engine/pkg/config"
	"github.com/schemascribe/scribe-engine/pkg/database"
	"github.com/schemascribe/scribe-engine/pkg/logging"
	"github.com/schemascribe/scribe-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	var (
		objectName = flag.String("object", "", "name of the object to document (required)")
		container  = flag.String("container", "", "schema hint; empty searches all schemas")
		apply      = flag.Bool("apply", false, "apply metadata writes (default is preview only)")
		showBody   = flag.Bool("body", false, "print the full synthesized body instead of the header")
	)
	flag.Parse()

	if *objectName == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Starting scribe-engine",
		zap.String("version", cfg.Version),
		zap.String("driver", cfg.Store.Driver),
		zap.String("database", cfg.Store.Database),
		zap.String("object", *objectName))

	ctx := context.Background()

	store, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open object store",
			zap.String("error", logging.SanitizeError(err)))
	}
	defer cleanup()

	svc := services.NewDocumentationService(store, cfg.Engine.ActingUser, logger)

	result, err := svc.SynthesizeDocumentation(ctx, *container, *objectName, *apply)
	if err != nil {
		logger.Fatal("Synthesis failed",
			zap.String("object", *objectName),
			zap.String("error", logging.SanitizeError(err)))
	}

	if *showBody {
		fmt.Println(result.Body)
	} else {
		fmt.Println(result.Header)
	}

	if len(result.Writes) > 0 && !result.WritesApplied {
		fmt.Printf("-- %d metadata write(s) pending; re-run with -apply to persist:\n", len(result.Writes))
		for _, entry := range result.Writes {
			fmt.Printf("--   %s = %s\n", entry.Key, logging.TruncateString(entry.Value, 80))
		}
	}
}

// newLogger builds a production logger, or a development logger for local
// environments.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStore constructs the configured store implementation. The returned
// cleanup closes everything the store depends on.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (objectstore.ObjectStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverSQLServer:
		store, err := mssql.NewStore(ctx, &mssql.Config{
			Host:                   cfg.Store.Host,
			Port:                   cfg.Store.EffectivePort(),
			Database:               cfg.Store.Database,
			Username:               cfg.Store.User,
			Password:               cfg.Store.Password,
			Encrypt:                cfg.Store.Encrypt,
			TrustServerCertificate: cfg.Store.TrustServerCertificate,
			ConnectionTimeout:      cfg.Store.ConnectionTimeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case config.DriverPostgres:
		url := cfg.Store.PostgresURL()

		// Migrations need a database/sql handle; the store itself uses pgx.
		migrationDB, err := sql.Open("pgx", url)
		if err != nil {
			return nil, nil, fmt.Errorf("open migration connection: %w", err)
		}
		if err := database.RunMigrations(migrationDB, cfg.Engine.MigrationsPath, logger); err != nil {
			migrationDB.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		migrationDB.Close()

		db, err := database.NewConnection(ctx, &database.Config{
			URL:            url,
			MaxConnections: cfg.Store.MaxConnections,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		store := postgres.NewStore(db, cfg.Store.Database, logger)
		return store, func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedStoreDriver, cfg.Store.Driver)
	}
}
