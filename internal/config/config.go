package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/attest/internal/history"
	"github.com/JaimeStill/attest/pkg/classifier"
	"github.com/JaimeStill/attest/pkg/database"
	"github.com/JaimeStill/attest/pkg/kvstore"
	"github.com/JaimeStill/attest/pkg/ledger"
	"github.com/JaimeStill/attest/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvAttestEnv             = "ATTEST_ENV"
	EnvAttestShutdownTimeout = "ATTEST_SHUTDOWN_TIMEOUT"
	EnvAttestVersion         = "ATTEST_VERSION"
)

var classifierEnv = &classifier.Env{
	URL:       "ATTEST_CLASSIFIER_URL",
	TextURL:   "ATTEST_CLASSIFIER_TEXT_URL",
	FieldName: "ATTEST_CLASSIFIER_FIELD_NAME",
	Timeout:   "ATTEST_CLASSIFIER_TIMEOUT",
}

var ledgerEnv = &ledger.Env{
	EndpointURL:     "ATTEST_LEDGER_ENDPOINT_URL",
	CredentialRef:   "ATTEST_LEDGER_CREDENTIAL_REF",
	ContractAddress: "ATTEST_LEDGER_CONTRACT_ADDRESS",
	ChainID:         "ATTEST_LEDGER_CHAIN_ID",
	GasLimit:        "ATTEST_LEDGER_GAS_LIMIT",
	Timeout:         "ATTEST_LEDGER_TIMEOUT",
	PollInterval:    "ATTEST_LEDGER_POLL_INTERVAL",
}

// DatabaseEnv names the variables that override the database section. cmd/migrate
// shares it so both binaries resolve the same connection.
var DatabaseEnv = &database.Env{
	URL:             "ATTEST_DB_URL",
	Host:            "ATTEST_DB_HOST",
	Port:            "ATTEST_DB_PORT",
	Name:            "ATTEST_DB_NAME",
	User:            "ATTEST_DB_USER",
	Password:        "ATTEST_DB_PASSWORD",
	SSLMode:         "ATTEST_DB_SSL_MODE",
	MaxOpenConns:    "ATTEST_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "ATTEST_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "ATTEST_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "ATTEST_DB_CONN_TIMEOUT",
}

var redisEnv = &kvstore.Env{
	Addr:        "ATTEST_REDIS_ADDR",
	Username:    "ATTEST_REDIS_USERNAME",
	Password:    "ATTEST_REDIS_PASSWORD",
	DB:          "ATTEST_REDIS_DB",
	Prefix:      "ATTEST_REDIS_PREFIX",
	DialTimeout: "ATTEST_REDIS_DIAL_TIMEOUT",
}

var storageEnv = &storage.Env{
	Enabled:          "ATTEST_STORAGE_ENABLED",
	ContainerName:    "ATTEST_STORAGE_CONTAINER_NAME",
	ConnectionString: "ATTEST_STORAGE_CONNECTION_STRING",
	AccountURL:       "ATTEST_STORAGE_ACCOUNT_URL",
	Timeout:          "ATTEST_STORAGE_TIMEOUT",
}

// Config is the root configuration for the attest service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Logging         LoggingConfig     `toml:"logging"`
	API             APIConfig         `toml:"api"`
	Classifier      classifier.Config `toml:"classifier"`
	Ledger          ledger.Config     `toml:"ledger"`
	History         HistoryConfig     `toml:"history"`
	Database        database.Config   `toml:"database"`
	Redis           kvstore.Config    `toml:"redis"`
	Storage         storage.Config    `toml:"storage"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the ATTEST_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAttestEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
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
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.API.Merge(&overlay.API)
	c.Classifier.Merge(&overlay.Classifier)
	c.Ledger.Merge(&overlay.Ledger)
	c.History.Merge(&overlay.History)
	c.Database.Merge(&overlay.Database)
	c.Redis.Merge(&overlay.Redis)
	c.Storage.Merge(&overlay.Storage)
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
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Classifier.Finalize(classifierEnv); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Ledger.Finalize(ledgerEnv); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	if err := c.History.Finalize(); err != nil {
		return fmt.Errorf("history: %w", err)
	}

	// Backing stores are only validated when the history backend needs them.
	switch c.History.Backend {
	case history.BackendPostgres:
		if err := c.Database.Finalize(DatabaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	case history.BackendRedis:
		if err := c.Redis.Finalize(redisEnv); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}

	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
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
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAttestShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAttestVersion); v != "" {
		c.Version = v
	}
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
	if env := os.Getenv(EnvAttestEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
