package analytics_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/accredit/internal/analytics"
	"github.com/JaimeStill/accredit/internal/kpi"
	"github.com/JaimeStill/accredit/pkg/routes"
)

func setupMux(src analytics.Source) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, analytics.New(src, discard()).Handler(1<<20).Routes())
	return mux
}

func post(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCompare(t *testing.T) {
	cse := set("cse", 2023, kpi.Some(70))
	ece := set("ece", 2023, kpi.Some(90))
	mux := setupMux(newSource(cse, ece))

	rec := post(t, mux, "/analytics/compare", map[string]any{
		"submission_ids": ids(cse, ece),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Accepted []struct {
			SubmissionID uuid.UUID `json:"submission_id"`
		} `json:"accepted"`
		Rejected []struct {
			Fault struct {
				Kind string `json:"error_kind"`
			} `json:"fault"`
		} `json:"rejected"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Accepted) != 1 || body.Accepted[0].SubmissionID != cse.SubmissionID {
		t.Errorf("accepted = %+v", body.Accepted)
	}
	if len(body.Rejected) != 1 || body.Rejected[0].Fault.Kind != "department_mismatch" {
		t.Errorf("rejected = %+v", body.Rejected)
	}
}

func TestHandlerTrendInsufficientData(t *testing.T) {
	a := set("cse", 2022, kpi.Some(70))
	b := set("cse", 2023, kpi.Some(75))
	mux := setupMux(newSource(a, b))

	rec := post(t, mux, "/analytics/trend", map[string]any{
		"submission_ids": ids(a, b),
		"kpi_id":         "fsr_score",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var fault map[string]any
	json.NewDecoder(rec.Body).Decode(&fault)
	if fault["error_kind"] != "insufficient_data" {
		t.Errorf("error_kind = %v", fault["error_kind"])
	}
	if _, ok := fault["context"]; !ok {
		t.Error("fault must carry context")
	}
}

func TestHandlerForecastInsufficientIsOK(t *testing.T) {
	a := set("cse", 2022, kpi.Some(70))
	b := set("cse", 2023, kpi.Some(75))
	mux := setupMux(newSource(a, b))

	rec := post(t, mux, "/analytics/forecast", map[string]any{
		"submission_ids": ids(a, b),
		"kpi_id":         "fsr_score",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"predicted_value":null`) {
		t.Errorf("body = %s, want a null prediction", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "only 2 distinct years available") {
		t.Errorf("body = %s, want the insufficient data reason", rec.Body.String())
	}
}

func TestHandlerBadRequests(t *testing.T) {
	mux := setupMux(newSource())

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"malformed json", "/analytics/compare", "{", http.StatusBadRequest},
		{"missing scope", "/analytics/compare", "{}", http.StatusBadRequest},
		{"missing kpi", "/analytics/trend", `{"institution_id":"x","framework":"nba"}`, http.StatusBadRequest},
		{"unknown submission", "/analytics/compare", `{"submission_ids":["` + uuid.NewString() + `"]}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}
