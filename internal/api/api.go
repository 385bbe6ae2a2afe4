// Package api assembles the API module with the verification domain and route registration.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JaimeStill/attest/internal/config"
	"github.com/JaimeStill/attest/internal/infrastructure"
	"github.com/JaimeStill/attest/pkg/middleware"
	"github.com/JaimeStill/attest/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// When auth is enabled the OIDC issuer is discovered here, so ctx bounds
// that request.
func NewModule(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	groups := routeGroups(domain, runtime)

	mux := http.NewServeMux()
	patterns := registerRoutes(mux, groups)
	if err := registerSpec(mux, cfg, groups); err != nil {
		return nil, err
	}
	runtime.Logger.Debug("routes registered", "routes", patterns, "openapi", cfg.API.BasePath+openAPIPath)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.RateLimit(&cfg.API.RateLimit))

	if cfg.API.Auth.Enabled {
		verifier, err := middleware.NewVerifier(ctx, &cfg.API.Auth)
		if err != nil {
			return nil, fmt.Errorf("auth: %w", err)
		}
		m.Use(middleware.Auth(verifier, runtime.Logger))
	}

	return m, nil
}
