package api

import (
	"github.com/JaimeStill/attest/internal/config"
	"github.com/JaimeStill/attest/internal/infrastructure"
	"github.com/JaimeStill/attest/internal/verification"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Verification verification.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Verification: verification.Config{
			MaxUploadSize:     cfg.API.MaxUploadSizeBytes(),
			AllowedExtensions: cfg.API.AllowedExtensions,
			ArchiveTimeout:    cfg.Storage.TimeoutDuration(),
			Pagination:        cfg.API.Pagination,
		},
	}
}
