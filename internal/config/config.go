package config

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/accredit/pkg/database"
	"github.com/JaimeStill/accredit/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvAccreditEnv             = "ACCREDIT_ENV"
	EnvAccreditShutdownTimeout = "ACCREDIT_SHUTDOWN_TIMEOUT"
	EnvAccreditVersion         = "ACCREDIT_VERSION"
)

// DatabaseEnv names the ACCREDIT_DB_* overrides. cmd/migrate reads the same
// variables.
var DatabaseEnv = &database.Env{
	Host:            "ACCREDIT_DB_HOST",
	Port:            "ACCREDIT_DB_PORT",
	Name:            "ACCREDIT_DB_NAME",
	User:            "ACCREDIT_DB_USER",
	Password:        "ACCREDIT_DB_PASSWORD",
	SSLMode:         "ACCREDIT_DB_SSL_MODE",
	ApplicationName: "ACCREDIT_DB_APPLICATION_NAME",
	MaxOpenConns:    "ACCREDIT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "ACCREDIT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "ACCREDIT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "ACCREDIT_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "ACCREDIT_STORAGE_CONTAINER_NAME",
	ConnectionString: "ACCREDIT_STORAGE_CONNECTION_STRING",
	AccountURL:       "ACCREDIT_STORAGE_ACCOUNT_URL",
}

// Config is the root configuration for the accreditation scoring service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Scoring         ScoringConfig   `toml:"scoring"`
	Logging         LoggingConfig   `toml:"logging"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the ACCREDIT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAccreditEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration bounds the whole lifecycle shutdown, HTTP drain
// included.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.ShutdownTimeout)
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	mergeString(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	mergeString(&c.Version, overlay.Version)
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Scoring.Merge(&overlay.Scoring)
	c.Logging.Merge(&overlay.Logging)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(DatabaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Scoring.Finalize(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.Database.ApplicationName == "" {
		c.Database.ApplicationName = "accredit"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	mergeString(&c.ShutdownTimeout, os.Getenv(EnvAccreditShutdownTimeout))
	mergeString(&c.Version, os.Getenv(EnvAccreditVersion))
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvAccreditEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
