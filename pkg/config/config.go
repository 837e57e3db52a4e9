package config

import (
	"fmt"
	"net/url"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for scribe-engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values. Secrets
// (passwords) must only come from environment variables.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	// Store configuration (the database holding the objects to document)
	Store StoreConfig `yaml:"store"`

	// Engine behavior
	Engine EngineConfig `yaml:"engine"`
}

// StoreDriver values accepted by StoreConfig.Driver.
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
)

// StoreConfig holds connection settings for the object store.
type StoreConfig struct {
	Driver   string `yaml:"driver" env:"STORE_DRIVER" env-default:"sqlserver"`
	Host     string `yaml:"host" env:"STORE_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"STORE_PORT" env-default:"0"` // 0 = driver default
	User     string `yaml:"user" env:"STORE_USER" env-default:""`
	Password string `yaml:"-" env:"STORE_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"STORE_DATABASE" env-default:""`

	// SQL Server options
	Encrypt                bool `yaml:"encrypt" env:"STORE_ENCRYPT" env-default:"true"`
	TrustServerCertificate bool `yaml:"trust_server_certificate" env:"STORE_TRUST_SERVER_CERTIFICATE" env-default:"false"`
	ConnectionTimeout      int  `yaml:"connection_timeout" env:"STORE_CONNECTION_TIMEOUT" env-default:"30"`

	// Postgres options
	SSLMode        string `yaml:"ssl_mode" env:"STORE_SSL_MODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"STORE_MAX_CONNECTIONS" env-default:"10"`
}

// EngineConfig holds synthesis behavior settings.
type EngineConfig struct {
	// ActingUser appears in synthesized headers and sentinel entries.
	ActingUser string `yaml:"acting_user" env:"SCRIBE_ACTING_USER" env-default:"scribe-engine"`

	// MigrationsPath locates the SQL migrations for the Postgres property
	// table. Unused for SQL Server stores.
	MigrationsPath string `yaml:"migrations_path" env:"SCRIBE_MIGRATIONS_PATH" env-default:"migrations"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks cross-field constraints after loading.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLServer, DriverPostgres:
	default:
		return fmt.Errorf("store driver must be %q or %q, got %q",
			DriverSQLServer, DriverPostgres, c.Store.Driver)
	}

	if c.Store.Database == "" {
		return fmt.Errorf("store database is required")
	}
	if c.Store.User == "" {
		return fmt.Errorf("store user is required")
	}

	return nil
}

// EffectivePort returns the configured port, or the driver's default when
// the port is unset.
func (c *StoreConfig) EffectivePort() int {
	if c.Port > 0 {
		return c.Port
	}
	if c.Driver == DriverPostgres {
		return 5432
	}
	return 1433
}

// PostgresURL returns a connection URL for pgxpool.
func (c *StoreConfig) PostgresURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.EffectivePort()),
		Path:   "/" + c.Database,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
