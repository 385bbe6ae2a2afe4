package classifier

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds the external classification service endpoints.
type Config struct {
	URL       string `toml:"url"`
	TextURL   string `toml:"text_url"`
	FieldName string `toml:"field_name"`
	Timeout   string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URL       string
	TextURL   string
	FieldName string
	Timeout   string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.TextURL != "" {
		c.TextURL = overlay.TextURL
	}
	if overlay.FieldName != "" {
		c.FieldName = overlay.FieldName
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:5000/api/verify"
	}
	if c.FieldName == "" {
		c.FieldName = "file"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.URL != "" {
		if v := os.Getenv(env.URL); v != "" {
			c.URL = v
		}
	}
	if env.TextURL != "" {
		if v := os.Getenv(env.TextURL); v != "" {
			c.TextURL = v
		}
	}
	if env.FieldName != "" {
		if v := os.Getenv(env.FieldName); v != "" {
			c.FieldName = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := url.ParseRequestURI(c.URL); err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if c.TextURL != "" {
		if _, err := url.ParseRequestURI(c.TextURL); err != nil {
			return fmt.Errorf("invalid text_url: %w", err)
		}
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
