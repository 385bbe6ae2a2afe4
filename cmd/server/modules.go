package main

import (
	"context"
	"net/http"

	"github.com/JaimeStill/attest/internal/api"
	"github.com/JaimeStill/attest/internal/config"
	"github.com/JaimeStill/attest/internal/infrastructure"
	"github.com/JaimeStill/attest/pkg/handlers"
	"github.com/JaimeStill/attest/pkg/module"
)

// Modules holds every module mounted on the router.
type Modules struct {
	API *module.Module
}

// NewModules builds the modules from the shared infrastructure.
func NewModules(ctx context.Context, infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(ctx, cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

// Mount attaches the modules to router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

type healthResponse struct {
	Status     string            `json:"status"`
	Ready      bool              `json:"ready"`
	Version    string            `json:"version"`
	Classifier classifierHealth  `json:"classifier"`
	Ledger     ledgerHealth      `json:"ledger"`
	History    historyHealth     `json:"history"`
	Archive    archiveHealth     `json:"archive"`
	Failures   map[string]string `json:"failures,omitempty"`
}

type classifierHealth struct {
	Configured bool   `json:"configured"`
	URL        string `json:"url"`
	Text       bool   `json:"text"`
}

type ledgerHealth struct {
	Enabled bool `json:"enabled"`
}

type historyHealth struct {
	Backend string `json:"backend"`
}

type archiveHealth struct {
	Enabled bool `json:"enabled"`
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	// /health reports configuration, not reachability of the classifier.
	router.HandleNative("GET /health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if infra.Lifecycle.Degraded() {
			status = "degraded"
		}

		handlers.RespondJSON(w, http.StatusOK, healthResponse{
			Status:  status,
			Ready:   infra.Lifecycle.Ready(),
			Version: cfg.Version,
			Classifier: classifierHealth{
				Configured: infra.Classifier.URL() != "",
				URL:        infra.Classifier.URL(),
				Text:       infra.Classifier.SupportsText(),
			},
			Ledger:   ledgerHealth{Enabled: infra.Ledger.Enabled()},
			History:  historyHealth{Backend: infra.HistoryBackend},
			Archive:  archiveHealth{Enabled: infra.ArchiveEnabled()},
			Failures: infra.Lifecycle.Failures(),
		})
	})

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return router
}
