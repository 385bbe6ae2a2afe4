// Package routes declares HTTP endpoints as data so domain handlers can be
// mounted on any ServeMux under a prefix.
package routes

import (
	"net/http"

	"github.com/JaimeStill/attest/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler. OpenAPI, when set,
// documents the route in the generated spec.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// Key returns the ServeMux pattern for the route beneath prefix.
func (r Route) Key(prefix string) string {
	return r.Method + " " + prefix + r.Pattern
}
