package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/attest/internal/config"
	"github.com/JaimeStill/attest/pkg/openapi"
	"github.com/JaimeStill/attest/pkg/routes"
)

// openAPIPath is served relative to the module prefix.
const openAPIPath = "/openapi.json"

// registerSpec describes groups and serves the document from mux.
func registerSpec(mux *http.ServeMux, cfg *config.Config, groups []routes.Group) error {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	routes.Describe(spec, groups...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("marshal openapi: %w", err)
	}

	mux.HandleFunc("GET "+openAPIPath, openapi.ServeSpec(data))
	return nil
}
