package routes

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/attest/pkg/openapi"
)

// Group organizes routes under a common prefix. Children inherit the
// accumulated prefix of their parents. Schemas are the component schemas
// the group's operations reference.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
	Schemas  map[string]*openapi.Schema
}

// Register adds all routes from the given groups to the mux and returns
// the patterns it registered, in registration order.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var patterns []string
	for _, group := range groups {
		patterns = group.walk("", patterns, func(pattern string, h http.HandlerFunc) {
			mux.HandleFunc(pattern, h)
		})
	}
	return patterns
}

// Patterns lists the mux patterns the group expands to.
func (g Group) Patterns() []string {
	return g.walk("", nil, func(string, http.HandlerFunc) {})
}

func (g Group) walk(parent string, acc []string, fn func(string, http.HandlerFunc)) []string {
	prefix := parent + g.Prefix
	for _, route := range g.Routes {
		pattern := route.Key(prefix)
		fn(pattern, route.Handler)
		acc = append(acc, pattern)
	}
	for _, child := range g.Children {
		acc = child.walk(prefix, acc, fn)
	}
	return acc
}

// Describe adds every documented route in groups to spec, along with the
// groups' schemas. Undocumented routes are skipped.
func Describe(spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		group.describe("", spec)
	}
}

func (g Group) describe(parent string, spec *openapi.Spec) {
	prefix := parent + g.Prefix
	spec.Components.AddSchemas(g.Schemas)

	for _, route := range g.Routes {
		if route.OpenAPI == nil {
			continue
		}
		path := strings.TrimSuffix(prefix+route.Pattern, "{$}")
		if path == "" {
			path = "/"
		}
		spec.AddOperation(route.Method, path, route.OpenAPI)
	}
	for _, child := range g.Children {
		child.describe(prefix, spec)
	}
}
