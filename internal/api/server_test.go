package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/albapepper/buzzwatch/internal/config"
	"github.com/albapepper/buzzwatch/internal/watch"
)

type fixedStatus struct {
	status watch.Status
}

func (f fixedStatus) Status() watch.Status { return f.status }

func testRouter() http.Handler {
	cfg := &config.Config{
		Environment:      "test",
		CORSAllowOrigins: []string{"http://localhost:3000"},
	}
	provider := fixedStatus{status: watch.Status{
		Cycles:         7,
		PlayersTracked: 42,
		LastCycle: &watch.CycleStats{
			CycleID:   "abc123",
			StartedAt: time.Date(2025, 9, 3, 12, 0, 0, 0, time.UTC),
			Rows:      120,
			Approved:  2,
		},
	}}
	return NewRouter(provider, cfg)
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestStatusEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status watch.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if status.Cycles != 7 || status.PlayersTracked != 42 {
		t.Fatalf("status = %+v", status)
	}
	if status.LastCycle == nil || status.LastCycle.CycleID != "abc123" {
		t.Fatalf("last cycle = %+v", status.LastCycle)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
