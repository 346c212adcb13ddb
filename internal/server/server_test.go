package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/logging"
)

func TestNewServesRootAndUniformErrors(t *testing.T) {
	cfg := config.Config{
		AppName:        "FinTrack",
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "server-test-secret",
		AccessTokenTTL: time.Hour,
		IdempotencyTTL: time.Minute,
		BcryptCost:     4,
		CORSOrigins:    []string{"*"},
	}
	srv, err := New(cfg, nil, nil, logging.Discard())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected JSON error body, got %q", got)
	}
}

func TestNewRejectsMissingSecret(t *testing.T) {
	cfg := config.Config{AppEnv: "test", AccessTokenTTL: time.Hour}
	if _, err := New(cfg, nil, nil, logging.Discard()); err == nil {
		t.Fatalf("expected error without signing secret")
	}
}
