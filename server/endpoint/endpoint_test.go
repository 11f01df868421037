package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/vaani/component"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, handler gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	engine := gin.New()
	engine.GET(path, handler)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

func TestHealthAllHealthy(t *testing.T) {
	checker := func(ctx context.Context) []component.Health {
		return []component.Health{
			{Name: "engine", Status: component.StatusHealthy},
			{Name: "model-registry", Status: component.StatusHealthy},
		}
	}

	rec := serve(t, Health("vaani", checker), "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", body["status"])
	}
	if body["service"] != "vaani" {
		t.Errorf("expected service vaani, got %v", body["service"])
	}
}

func TestHealthDegraded(t *testing.T) {
	checker := func(ctx context.Context) []component.Health {
		return []component.Health{
			{Name: "engine", Status: component.StatusHealthy},
			{Name: "tempstore", Status: component.StatusDegraded, Message: "sweep backlog"},
		}
	}

	rec := serve(t, Health("vaani", checker), "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("degraded must still return 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "degraded" {
		t.Errorf("expected degraded, got %v", body["status"])
	}
}

func TestHealthUnhealthy(t *testing.T) {
	checker := func(ctx context.Context) []component.Health {
		return []component.Health{
			{Name: "engine", Status: component.StatusUnhealthy, Message: "draining"},
		}
	}

	rec := serve(t, Health("vaani", checker), "/health")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "unhealthy" {
		t.Errorf("expected unhealthy, got %v", body["status"])
	}
}

func TestHealthNilChecker(t *testing.T) {
	rec := serve(t, Health("vaani", nil), "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with nil checker, got %d", rec.Code)
	}
}

func TestInfo(t *testing.T) {
	rec := serve(t, Info("vaani"), "/info")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["service"] != "vaani" {
		t.Errorf("expected service vaani, got %v", body["service"])
	}
	if body["version"] == "" {
		t.Error("expected non-empty version")
	}
	if body["uptime"] == "" {
		t.Error("expected non-empty uptime")
	}
}

func TestMetrics(t *testing.T) {
	rec := serve(t, Metrics(), "/metrics")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if _, ok := body["goroutines"]; !ok {
		t.Error("expected goroutines field")
	}
	if _, ok := body["memory"]; !ok {
		t.Error("expected memory field")
	}
	if cpus, ok := body["cpus"].(float64); !ok || cpus < 1 {
		t.Errorf("expected positive cpu count, got %v", body["cpus"])
	}
}
