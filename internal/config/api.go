package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/attest/pkg/formatting"
	"github.com/JaimeStill/attest/pkg/middleware"
	"github.com/JaimeStill/attest/pkg/openapi"
	"github.com/JaimeStill/attest/pkg/pagination"
)

const (
	EnvAPIBasePath          = "ATTEST_API_BASE_PATH"
	EnvAPIMaxUploadSize     = "ATTEST_API_MAX_UPLOAD_SIZE"
	EnvAPIAllowedExtensions = "ATTEST_API_ALLOWED_EXTENSIONS"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "ATTEST_CORS_ENABLED",
	Origins:          "ATTEST_CORS_ORIGINS",
	AllowedMethods:   "ATTEST_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "ATTEST_CORS_ALLOWED_HEADERS",
	AllowCredentials: "ATTEST_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "ATTEST_CORS_MAX_AGE",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Enabled:           "ATTEST_RATE_LIMIT_ENABLED",
	RequestsPerSecond: "ATTEST_RATE_LIMIT_RPS",
	Burst:             "ATTEST_RATE_LIMIT_BURST",
}

var authEnv = &middleware.AuthEnv{
	Enabled:   "ATTEST_AUTH_ENABLED",
	IssuerURL: "ATTEST_AUTH_ISSUER_URL",
	Audience:  "ATTEST_AUTH_AUDIENCE",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "ATTEST_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "ATTEST_PAGINATION_MAX_PAGE_SIZE",
}

var openAPIEnv = &openapi.Env{
	Title:       "ATTEST_OPENAPI_TITLE",
	Description: "ATTEST_OPENAPI_DESCRIPTION",
}

var defaultExtensions = []string{"pdf", "jpg", "jpeg", "png", "txt"}

// APIConfig holds API routing, upload limits, and middleware settings.
type APIConfig struct {
	BasePath          string                     `toml:"base_path"`
	MaxUploadSize     string                     `toml:"max_upload_size"`
	AllowedExtensions []string                   `toml:"allowed_extensions"`
	CORS              middleware.CORSConfig      `toml:"cors"`
	RateLimit         middleware.RateLimitConfig `toml:"rate_limit"`
	Auth              middleware.AuthConfig      `toml:"auth"`
	Pagination        pagination.Config          `toml:"pagination"`
	OpenAPI           openapi.Config             `toml:"openapi"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 5 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested middleware configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if len(overlay.AllowedExtensions) > 0 {
		c.AllowedExtensions = overlay.AllowedExtensions
	}

	c.CORS.Merge(&overlay.CORS)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.Auth.Merge(&overlay.Auth)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "5MB"
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = defaultExtensions
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvAPIAllowedExtensions); v != "" {
		c.AllowedExtensions = strings.Split(v, ",")
	}
}

func (c *APIConfig) validate() error {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}

	exts := make([]string, 0, len(c.AllowedExtensions))
	for _, e := range c.AllowedExtensions {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			exts = append(exts, e)
		}
	}
	if len(exts) == 0 {
		return fmt.Errorf("allowed_extensions must not be empty")
	}
	c.AllowedExtensions = exts

	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("base_path must start with /: %q", c.BasePath)
	}
	return nil
}
