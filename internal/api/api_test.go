package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/accredit/internal/config"
	"github.com/JaimeStill/accredit/pkg/lifecycle"
	"github.com/JaimeStill/accredit/pkg/routes"
	"github.com/JaimeStill/accredit/pkg/storage"
)

func TestBuildSpecResolves(t *testing.T) {
	cfg := &config.Config{Version: "0.3.0"}
	if err := cfg.API.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	spec := buildSpec(cfg)
	if err := spec.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	for _, path := range []string{
		"/submissions",
		"/submissions/{id}/kpis/{kpi}/explain",
		"/analytics/trend",
		"/analytics/forecast",
	} {
		if _, ok := spec.Paths[path]; !ok {
			t.Errorf("openapi document missing %s", path)
		}
	}
	if spec.Paths["/evidence/{id}"].Head == nil {
		t.Error("evidence HEAD not documented")
	}
	if spec.Servers[0].URL != "/api" {
		t.Errorf("server = %s", spec.Servers[0].URL)
	}
}

type memoryStore struct {
	blobs map[string]string
}

func (m *memoryStore) Start(*lifecycle.Coordinator) error { return nil }

func (m *memoryStore) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	b, err := io.ReadAll(r)
	m.blobs[key] = string(b)
	return err
}

func (m *memoryStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(b)), nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}

func (m *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.blobs[key]
	return ok, nil
}

func TestEvidenceHandler(t *testing.T) {
	const id = "5f0c6a7e-2b1d-4c3e-9a8f-1e2d3c4b5a69"
	store := &memoryStore{blobs: map[string]string{
		"snapshots/" + id + ".json": `[{"field_id":"students_placed","raw_value":80}]`,
	}}

	mux := http.NewServeMux()
	h := newEvidenceHandler(store, slog.New(slog.DiscardHandler), "snapshots")
	routes.Register(mux, h.routes())

	tests := []struct {
		method, path string
		status       int
		body         string
	}{
		{"GET", "/evidence/" + id, http.StatusOK, "students_placed"},
		{"HEAD", "/evidence/" + id, http.StatusOK, ""},
		{"GET", "/evidence/00000000-0000-0000-0000-000000000001", http.StatusNotFound, ""},
		{"HEAD", "/evidence/00000000-0000-0000-0000-000000000001", http.StatusNotFound, ""},
		{"GET", "/evidence/not-a-uuid", http.StatusBadRequest, ""},
		{"HEAD", "/evidence/not-a-uuid", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}
