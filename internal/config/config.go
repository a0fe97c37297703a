package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the sitewise service.
// Environment variables are automatically parsed from the SITEWISE_ prefix.
type Config struct {
	// Build target selects high-level environment: local, cloud-dev, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override driver
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// SQLite Configuration
	SQLitePath string `envconfig:"SQLITE_PATH" default:""`

	// Auth Configuration
	JWTSecret     string `envconfig:"JWT_SECRET" default:""`
	TokenTTLHours int    `envconfig:"TOKEN_TTL_HOURS" default:"24"`

	// Bootstrap admin, created on first start when no users exist
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@sitewise.local"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:""`

	// Team roster file, optional
	RosterPath string `envconfig:"ROSTER_PATH" default:""`

	// Health checker cadence
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`

	// Insights upstream (generateContent endpoint)
	InsightsURL            string `envconfig:"INSIGHTS_URL" default:""`
	InsightsAPIKey         string `envconfig:"INSIGHTS_API_KEY" default:""`
	InsightsModel          string `envconfig:"INSIGHTS_MODEL" default:"gemini-2.5-flash"`
	InsightsTimeoutSeconds int    `envconfig:"INSIGHTS_TIMEOUT_SECONDS" default:"30"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to
// "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud-dev", "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	allowedDB := map[string]bool{"sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if c.DBDriver == "sqlite" && c.SQLitePath == "" {
		c.SQLitePath = "sitewise.db"
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required for DB_DRIVER=postgres")
	}
	return nil
}

// New creates a Config by parsing environment variables.
// Variables are prefixed with SITEWISE_, e.g. SITEWISE_HTTP_PORT.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SITEWISE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Str("sqlite_path", cfg.SQLitePath).
		Str("roster_path", cfg.RosterPath).
		Bool("insights_configured", cfg.InsightsURL != "").
		Str("insights_model", cfg.InsightsModel).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		Environment:   EnvTesting,
		BuildTarget:   "local",
		DBDriver:      "auto",
		HTTPPort:      8080,
		JWTSecret:     "test-secret",
		TokenTTLHours: 1,
		AdminEmail:    "admin@test.local",
		AdminPassword: "admin",
		InsightsModel: "gemini-2.5-flash",
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
