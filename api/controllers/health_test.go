package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farmlog-app/farmlog-backend/pkg/config"
)

type stubProbe struct {
	err error
}

func (s stubProbe) Ping(context.Context) error {
	return s.err
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvDev, Port: "0"}}
	handler := HealthLive(cfg)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-FarmLog-Env"); got != config.AppEnvDev {
		t.Fatalf("unexpected env header %q", got)
	}
}

func TestHealthReadyAllProbesHealthy(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvDev, Port: "0"}}
	handler := HealthReady(cfg, nil, map[string]Pinger{
		"database": stubProbe{},
		"redis":    stubProbe{},
	})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthReadyFailingProbe(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvDev, Port: "0"}}
	handler := HealthReady(cfg, nil, map[string]Pinger{
		"database": stubProbe{err: errors.New("connection refused")},
	})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
