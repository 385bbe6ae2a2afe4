package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/attest/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("Test API", "1.0.0")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Test API" || spec.Info.Version != "1.0.0" {
		t.Errorf("info: got %+v", spec.Info)
	}
	if spec.Components == nil || spec.Components.Schemas["ErrorResponse"] == nil {
		t.Fatal("shared error schema missing")
	}
	if spec.Paths == nil {
		t.Fatal("paths should not be nil")
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	get := &openapi.Operation{Summary: "get"}
	post := &openapi.Operation{Summary: "post"}

	spec.AddOperation("GET", "/items", get)
	spec.AddOperation("post", "/items", post)
	spec.AddOperation("PATCH", "/items", &openapi.Operation{})

	item := spec.Paths["/items"]
	if item == nil || item.Get != get || item.Post != post {
		t.Fatalf("path item = %+v", item)
	}
	if item.Put != nil || item.Delete != nil {
		t.Error("unsupported method stored")
	}
}

func TestResponses(t *testing.T) {
	ok := openapi.ResponseJSON("Found", "Record")
	got := openapi.Responses(ok, http.StatusNotFound, http.StatusBadGateway, http.StatusTeapot)

	if got[http.StatusOK] != ok {
		t.Error("success response missing")
	}
	if got[http.StatusNotFound].Ref != "#/components/responses/NotFound" {
		t.Errorf("404 ref = %q", got[http.StatusNotFound].Ref)
	}
	if got[http.StatusBadGateway].Ref != "#/components/responses/BadGateway" {
		t.Errorf("502 ref = %q", got[http.StatusBadGateway].Ref)
	}
	if _, ok := got[http.StatusTeapot]; ok {
		t.Error("unknown status included")
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_OPENAPI_TITLE", "Custom")

	var cfg openapi.Config
	if err := cfg.Finalize(&openapi.Env{Title: "TEST_OPENAPI_TITLE"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Title != "Custom" {
		t.Errorf("title = %s, want Custom", cfg.Title)
	}
	if cfg.Description == "" {
		t.Error("description default not applied")
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	spec.AddOperation("GET", "/health", &openapi.Operation{
		Responses: openapi.Responses(&openapi.Response{Description: "ok"}),
	})

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}

	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	paths, _ := decoded["paths"].(map[string]any)
	if _, ok := paths["/health"]; !ok {
		t.Errorf("paths = %v", paths)
	}
}
