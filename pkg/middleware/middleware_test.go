package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/attest/pkg/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestApplyOrder(t *testing.T) {
	var order []string
	mw := middleware.New()

	for _, name := range []string{"first", "second"} {
		mw.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	handler := mw.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "first,second,handler" {
		t.Errorf("order: got %v, want [first second handler]", order)
	}
}

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{Enabled: true, Origins: []string{"http://localhost:3000"}}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		cfg        *middleware.CORSConfig
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{"disabled", &middleware.CORSConfig{Origins: []string{"http://localhost:3000"}}, "GET", "http://localhost:3000", "", http.StatusOK},
		{"allowed origin", cfg, "GET", "http://localhost:3000", "http://localhost:3000", http.StatusOK},
		{"disallowed origin", cfg, "GET", "http://evil.example", "", http.StatusOK},
		{"preflight", cfg, "OPTIONS", "http://localhost:3000", "http://localhost:3000", http.StatusNoContent},
		{"wildcard", &middleware.CORSConfig{Enabled: true, Origins: []string{"*"}}, "GET", "http://any.example", "http://any.example", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/verify", nil)
			req.Header.Set("Origin", tt.origin)

			middleware.CORS(tt.cfg)(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/verify", nil))

	out := buf.String()
	for _, want := range []string{"level=WARN", "method=POST", "uri=/verify", "status=502", "bytes=8"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestRateLimit(t *testing.T) {
	t.Run("rejects after burst", func(t *testing.T) {
		cfg := &middleware.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 2}
		handler := middleware.RateLimit(cfg)(okHandler())

		codes := make([]int, 0, 3)
		for range 3 {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/verify", nil)
			req.RemoteAddr = "10.0.0.1:5000"
			handler.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)

			if rec.Code == http.StatusTooManyRequests {
				if rec.Header().Get("Retry-After") == "" {
					t.Error("missing Retry-After header")
				}
				if !strings.Contains(rec.Body.String(), `"kind":"rate_limited"`) {
					t.Errorf("body = %s", rec.Body.String())
				}
			}
		}

		if codes[0] != 200 || codes[1] != 200 || codes[2] != 429 {
			t.Errorf("codes = %v, want [200 200 429]", codes)
		}
	})

	t.Run("clients tracked separately", func(t *testing.T) {
		cfg := &middleware.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1}
		handler := middleware.RateLimit(cfg)(okHandler())

		for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = addr
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Errorf("%s: status = %d, want 200", addr, rec.Code)
			}
		}
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := &middleware.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}
		handler := middleware.RateLimit(cfg)(okHandler())

		for range 5 {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
		}
	})
}

type mockVerifier struct {
	verifyFn func(ctx context.Context, raw string) (*oidc.IDToken, error)
}

func (m *mockVerifier) Verify(ctx context.Context, raw string) (*oidc.IDToken, error) {
	return m.verifyFn(ctx, raw)
}

func TestAuth(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(ctx context.Context, raw string) (*oidc.IDToken, error) {
			if raw != "good-token" {
				return nil, errors.New("signature mismatch")
			}
			return &oidc.IDToken{Subject: "analyst-7"}, nil
		},
	}

	var subject string
	handler := middleware.Auth(verifier, slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject = middleware.Subject(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
	)

	tests := []struct {
		name   string
		method string
		header string
		want   int
	}{
		{"valid token", "GET", "Bearer good-token", http.StatusOK},
		{"lowercase scheme", "GET", "bearer good-token", http.StatusOK},
		{"missing header", "GET", "", http.StatusUnauthorized},
		{"basic scheme", "GET", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"bad token", "GET", "Bearer forged", http.StatusUnauthorized},
		{"preflight", "OPTIONS", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject = ""
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/verify/history", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && !strings.Contains(rec.Body.String(), `"kind":"unauthorized"`) {
				t.Errorf("body = %s", rec.Body.String())
			}
			if tt.name == "valid token" && subject != "analyst-7" {
				t.Errorf("subject = %q, want analyst-7", subject)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("cors env origins", func(t *testing.T) {
		t.Setenv("TEST_CORS_ORIGINS", "http://a.example, http://b.example ,")
		cfg := &middleware.CORSConfig{}
		if err := cfg.Finalize(&middleware.CORSEnv{Origins: "TEST_CORS_ORIGINS"}); err != nil {
			t.Fatal(err)
		}
		if len(cfg.Origins) != 2 || cfg.Origins[1] != "http://b.example" {
			t.Errorf("origins = %v", cfg.Origins)
		}
	})

	t.Run("rate limit defaults", func(t *testing.T) {
		cfg := &middleware.RateLimitConfig{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatal(err)
		}
		if cfg.RequestsPerSecond != 5 || cfg.Burst != 10 {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("rate limit invalid", func(t *testing.T) {
		cfg := &middleware.RateLimitConfig{RequestsPerSecond: -1}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("auth requires issuer and audience", func(t *testing.T) {
		cfg := &middleware.AuthConfig{Enabled: true, IssuerURL: "https://login.example.com"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected error for missing audience")
		}
	})

	t.Run("auth disabled skips validation", func(t *testing.T) {
		cfg := &middleware.AuthConfig{}
		if err := cfg.Finalize(nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
