package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/farmlog-app/farmlog-backend/internal/accounts"
	"github.com/farmlog-app/farmlog-backend/internal/croplogs"
	"github.com/farmlog-app/farmlog-backend/internal/farms"
	"github.com/farmlog-app/farmlog-backend/pkg/config"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAccountService struct{}

func (stubAccountService) Register(ctx context.Context, req accounts.RegisterRequest) error {
	return nil
}

func (stubAccountService) Login(ctx context.Context, req accounts.LoginRequest) (bool, error) {
	return true, nil
}

func (stubAccountService) IsAvailable(ctx context.Context, userID string) (bool, error) {
	return true, nil
}

type stubFarmService struct{}

func (stubFarmService) Create(ctx context.Context, input farms.CreateFarmInput) (*farms.FarmDTO, error) {
	return &farms.FarmDTO{FarmID: 1}, nil
}

func (stubFarmService) List(ctx context.Context, userID string) ([]farms.FarmDTO, error) {
	return []farms.FarmDTO{}, nil
}

func (stubFarmService) ListMonth(ctx context.Context, userID, month string) ([]farms.FarmDTO, error) {
	return []farms.FarmDTO{}, nil
}

func (stubFarmService) Update(ctx context.Context, input farms.UpdateFarmInput) error {
	return nil
}

func (stubFarmService) Delete(ctx context.Context, farmID int64) error {
	return nil
}

type stubCropService struct{}

func (stubCropService) Create(ctx context.Context, input croplogs.CreateCropLogInput) (*croplogs.CropLogDTO, error) {
	return &croplogs.CropLogDTO{ID: 1}, nil
}

func (stubCropService) List(ctx context.Context, farmID int64) ([]croplogs.CropLogDTO, error) {
	return []croplogs.CropLogDTO{}, nil
}

func (stubCropService) Update(ctx context.Context, input croplogs.UpdateCropLogInput) error {
	return nil
}

func (stubCropService) Delete(ctx context.Context, id int64) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Env:            config.AppEnvDev,
			Port:           "0",
			RequestTimeout: 5 * time.Second,
		},
	}
}

func newTestRouter(t *testing.T, registry *prometheus.Registry) http.Handler {
	t.Helper()
	return NewRouter(
		testConfig(),
		nil,
		stubPinger{},
		nil,
		stubAccountService{},
		stubFarmService{},
		stubCropService{},
		nil,
		registry,
	)
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
		if got := resp.Header().Get("X-FarmLog-Env"); got != config.AppEnvDev {
			t.Fatalf("%s: unexpected env header %q", path, got)
		}
	}
}

func TestRouterAccountRoutes(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"user_id":"abc","password":"ab45bhbs"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data bool `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data {
		t.Fatal("expected data true")
	}
}

func TestRouterFarmAndCropRoutesAreMounted(t *testing.T) {
	router := newTestRouter(t, nil)

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/farm/check?user_id=abc", "", http.StatusOK},
		{http.MethodDelete, "/farm/delete", `{"id":1}`, http.StatusOK},
		{http.MethodPost, "/farm/month", `{"user_id":"abc","month":"2025-04"}`, http.StatusOK},
		{http.MethodGet, "/crops/check?farm_id=1", "", http.StatusOK},
		{http.MethodDelete, "/crops/delete", `{"id":1}`, http.StatusOK},
		{http.MethodGet, "/does-not-exist", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		var req *http.Request
		if tc.body != "" {
			req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(tc.method, tc.path, nil)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != tc.want {
			t.Fatalf("%s %s: expected %d got %d: %s", tc.method, tc.path, tc.want, resp.Code, resp.Body.String())
		}
	}
}

func TestRouterExposesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	router := newTestRouter(t, registry)

	warm := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	router.ServeHTTP(httptest.NewRecorder(), warm)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "http_requests_total") {
		t.Fatal("expected request counter in metrics output")
	}
}
