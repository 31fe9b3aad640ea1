// Package config loads Folio configuration from TOML files and FOLIO_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/folio/internal/derive"
	"github.com/JaimeStill/folio/pkg/database"
	"github.com/JaimeStill/folio/pkg/render"
	"github.com/JaimeStill/folio/pkg/storage"
	"github.com/JaimeStill/folio/pkg/workers"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvFolioEnv             = "FOLIO_ENV"
	EnvFolioShutdownTimeout = "FOLIO_SHUTDOWN_TIMEOUT"
	EnvFolioVersion         = "FOLIO_VERSION"
	EnvFolioLogLevel        = "FOLIO_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	URL:             "FOLIO_DB_URL",
	Host:            "FOLIO_DB_HOST",
	Port:            "FOLIO_DB_PORT",
	Name:            "FOLIO_DB_NAME",
	User:            "FOLIO_DB_USER",
	Password:        "FOLIO_DB_PASSWORD",
	SSLMode:         "FOLIO_DB_SSL_MODE",
	MaxOpenConns:    "FOLIO_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "FOLIO_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "FOLIO_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "FOLIO_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:              "FOLIO_STORAGE_PROVIDER",
	Buckets:               "FOLIO_STORAGE_BUCKETS",
	PublicBucket:          "FOLIO_STORAGE_PUBLIC_BUCKET",
	AzureConnectionString: "FOLIO_STORAGE_AZURE_CONNECTION_STRING",
	AzureAccountURL:       "FOLIO_STORAGE_AZURE_ACCOUNT_URL",
	S3Region:              "FOLIO_STORAGE_S3_REGION",
	S3Endpoint:            "FOLIO_STORAGE_S3_ENDPOINT",
	S3AccessKeyID:         "FOLIO_STORAGE_S3_ACCESS_KEY_ID",
	S3SecretAccessKey:     "FOLIO_STORAGE_S3_SECRET_ACCESS_KEY",
	S3UsePathStyle:        "FOLIO_STORAGE_S3_USE_PATH_STYLE",
}

var renderEnv = &render.Env{
	DPI:        "FOLIO_RENDER_DPI",
	TempDir:    "FOLIO_RENDER_TEMP_DIR",
	Magick:     "FOLIO_RENDER_MAGICK",
	Pdftocairo: "FOLIO_RENDER_PDFTOCAIRO",
}

var workersEnv = &workers.Env{
	Workers:   "FOLIO_WORKERS",
	QueueSize: "FOLIO_WORKERS_QUEUE_SIZE",
}

var deriveEnv = &derive.Env{
	URLTTL:            "FOLIO_DERIVE_URL_TTL",
	DisableCoalescing: "FOLIO_DERIVE_DISABLE_COALESCING",
}

// Config is the root configuration for the Folio service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Render          render.Config   `toml:"render"`
	Workers         workers.Config  `toml:"workers"`
	Derive          derive.Config   `toml:"derive"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
	LogLevel        string          `toml:"log_level"`
}

// Env returns the FOLIO_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvFolioEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return parse(c.ShutdownTimeout)
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with config files resolved relative to dir.
func LoadFrom(dir string) (*Config, error) {
	cfg, err := loadFiles(dir)
	if err != nil {
		return nil, err
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

func loadFiles(dir string) (*Config, error) {
	cfg := &Config{}

	base := dir + string(os.PathSeparator) + BaseConfigFile
	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(dir); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

// LoadDatabase resolves only the database section from the files in dir
// and FOLIO_DB_* variables. Tools that never touch blob storage use it to
// avoid the storage and API validation Load performs.
func LoadDatabase(dir string) (*database.Config, error) {
	cfg, err := loadFiles(dir)
	if err != nil {
		return nil, err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return &cfg.Database, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Render.Merge(&overlay.Render)
	c.Workers.Merge(&overlay.Workers)
	c.Derive.Merge(&overlay.Derive)
	c.API.Merge(&overlay.API)
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
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Render.Finalize(renderEnv); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := c.Workers.Finalize(workersEnv); err != nil {
		return fmt.Errorf("workers: %w", err)
	}
	if err := c.Derive.Finalize(deriveEnv); err != nil {
		return fmt.Errorf("derive: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvFolioShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvFolioVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvFolioLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %q", c.LogLevel)
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

func overlayPath(dir string) string {
	if env := os.Getenv(EnvFolioEnv); env != "" {
		path := dir + string(os.PathSeparator) + fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
