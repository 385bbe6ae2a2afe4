package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/attest/pkg/handlers"
	"github.com/JaimeStill/attest/pkg/ledger"
	"github.com/JaimeStill/attest/pkg/openapi"
	"github.com/JaimeStill/attest/pkg/routes"
)

type ledgerHandler struct {
	ledger ledger.System
	logger *slog.Logger
}

func newLedgerHandler(l ledger.System, logger *slog.Logger) *ledgerHandler {
	return &ledgerHandler{
		ledger: l,
		logger: logger.With("handler", "ledger"),
	}
}

func (h *ledgerHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/ledger",
		Schemas: map[string]*openapi.Schema{
			"LedgerStatus": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"success":      {Type: "boolean"},
					"enabled":      {Type: "boolean"},
					"connected":    {Type: "boolean"},
					"chain_id":     {Type: "integer"},
					"latest_block": {Type: "integer"},
					"contract":     {Type: "string"},
					"account":      {Type: "string"},
					"error":        {Type: "string"},
				},
			},
		},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "/status",
				Handler: h.status,
				OpenAPI: &openapi.Operation{
					Summary: "Report ledger connectivity",
					Tags:    []string{"Ledger"},
					Responses: openapi.Responses(
						openapi.ResponseJSON("Ledger status", "LedgerStatus"),
					),
				},
			},
		},
	}
}

// status always answers 200; an unreachable ledger is reported in the body.
func (h *ledgerHandler) status(w http.ResponseWriter, r *http.Request) {
	s := h.ledger.Status(r.Context())
	if s.Enabled && !s.Connected {
		h.logger.Warn("ledger status check failed", "error", s.Error)
	}

	handlers.RespondJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		ledger.Status
	}{true, s})
}
