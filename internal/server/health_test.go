package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"word-counter/internal/storage"
)

func getJSON(t *testing.T, h http.Handler, path string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s: decode %q: %v", path, rr.Body.String(), err)
	}
	return rr.Code, body
}

func TestHealth_Healthy(t *testing.T) {
	dir := t.TempDir()
	disk, err := storage.NewDisk(dir, storage.Linker{BaseURL: testBaseURL})
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	s := newTestServer(t, disk, func(c *Config) { c.Backend = storage.BackendDisk })

	code, body := getJSON(t, s.Handler(), "/health")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["status"] != string(HealthStatusHealthy) {
		t.Errorf("status = %v", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("version = %v", body["version"])
	}
}

func TestHealth_StorageDown(t *testing.T) {
	s := newTestServer(t, failingStore{err: errors.New("connection refused")}, nil)
	h := s.Handler()

	code, body := getJSON(t, h, "/health")
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
	if body["status"] != string(HealthStatusUnhealthy) {
		t.Errorf("status = %v", body["status"])
	}

	code, body = getJSON(t, h, "/ready")
	if code != http.StatusServiceUnavailable {
		t.Errorf("ready: expected 503, got %d", code)
	}
	if body["status"] != "not_ready" {
		t.Errorf("ready status = %v", body["status"])
	}

	code, _ = getJSON(t, h, "/live")
	if code != http.StatusOK {
		t.Errorf("live: expected 200, got %d", code)
	}
}

func TestHealth_OpenBreakerIsDegraded(t *testing.T) {
	cb := storage.NewCircuitBreaker(1, time.Hour)
	_ = cb.Execute(func() error { return errors.New("boom") })
	if cb.State() != storage.StateOpen {
		t.Fatalf("breaker should be open, got %s", cb.State())
	}

	s := newTestServer(t, memoryStore(), func(c *Config) { c.Breaker = cb })

	code, body := getJSON(t, s.Handler(), "/health")
	if code != http.StatusOK {
		t.Errorf("expected 200 for degraded, got %d", code)
	}
	if body["status"] != string(HealthStatusDegraded) {
		t.Errorf("status = %v", body["status"])
	}
}

func TestDetermineOverallHealth(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]ComponentHealth
		want       HealthStatus
	}{
		{"empty", map[string]ComponentHealth{}, HealthStatusHealthy},
		{"all up", map[string]ComponentHealth{"a": {Status: ComponentStatusUp}}, HealthStatusHealthy},
		{"one degraded", map[string]ComponentHealth{
			"a": {Status: ComponentStatusUp},
			"b": {Status: ComponentStatusDegraded},
		}, HealthStatusDegraded},
		{"down wins", map[string]ComponentHealth{
			"a": {Status: ComponentStatusDown},
			"b": {Status: ComponentStatusDegraded},
		}, HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineOverallHealth(tt.components); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
