package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeProber struct {
	ready  bool
	checks map[string]error
}

func (f fakeProber) Ready() bool { return f.ready }

func (f fakeProber) Probe(ctx context.Context) map[string]error { return f.checks }

func probe(t *testing.T, p prober) (int, readiness) {
	t.Helper()
	rec := httptest.NewRecorder()
	readyz(p)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var body readiness
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, body
}

func TestReadyzStarting(t *testing.T) {
	code, body := probe(t, fakeProber{})
	if code != http.StatusServiceUnavailable || body.Status != "starting" {
		t.Errorf("got %d %+v", code, body)
	}
}

func TestReadyzHealthy(t *testing.T) {
	code, body := probe(t, fakeProber{
		ready:  true,
		checks: map[string]error{"database": nil, "storage": nil},
	})
	if code != http.StatusOK || body.Status != "ready" {
		t.Fatalf("got %d %+v", code, body)
	}
	if body.Checks["database"] != "ok" || body.Checks["storage"] != "ok" {
		t.Errorf("checks = %v", body.Checks)
	}
}

func TestReadyzDegraded(t *testing.T) {
	code, body := probe(t, fakeProber{
		ready: true,
		checks: map[string]error{
			"database": nil,
			"storage":  errors.New("container evidence: connection refused"),
		},
	})
	if code != http.StatusServiceUnavailable || body.Status != "degraded" {
		t.Fatalf("got %d %+v", code, body)
	}
	if body.Checks["storage"] != "container evidence: connection refused" {
		t.Errorf("storage check = %q", body.Checks["storage"])
	}
	if body.Checks["database"] != "ok" {
		t.Errorf("database check = %q", body.Checks["database"])
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
