package api

import (
	"net/http"

	"github.com/JaimeStill/attest/pkg/routes"
)

func routeGroups(domain *Domain, runtime *Runtime) []routes.Group {
	return []routes.Group{
		domain.Verification.Handler().Routes(),
		newLedgerHandler(runtime.Ledger, runtime.Logger).routes(),
	}
}

func registerRoutes(mux *http.ServeMux, groups []routes.Group) []string {
	return routes.Register(mux, groups...)
}
