package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/attest/internal/history"
)

const EnvHistoryBackend = "ATTEST_HISTORY_BACKEND"

// HistoryConfig selects where verification records are kept.
type HistoryConfig struct {
	Backend string `toml:"backend"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *HistoryConfig) Finalize() error {
	if c.Backend == "" {
		c.Backend = history.BackendMemory
	}
	if v := os.Getenv(EnvHistoryBackend); v != "" {
		c.Backend = v
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))

	switch c.Backend {
	case history.BackendMemory, history.BackendPostgres, history.BackendRedis:
		return nil
	}
	return fmt.Errorf("unknown backend %q", c.Backend)
}

// Merge overwrites non-zero fields from overlay.
func (c *HistoryConfig) Merge(overlay *HistoryConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
}
