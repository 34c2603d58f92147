package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/pkg/handlers"
)

var discard = slog.New(slog.DiscardHandler)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondJSON(rec, http.StatusCreated, map[string]float64{"overall_score": 72.5})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %s", ct)
	}

	var body map[string]float64
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["overall_score"] != 72.5 {
		t.Errorf("body = %v", body)
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondError(rec, discard, http.StatusNotFound, errors.New("submission not found"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}

	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["error"] != "submission not found" {
		t.Errorf("body = %v", body)
	}
}

func TestRespondFault(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{
			name:   "department mismatch",
			err:    faults.Newf(faults.KindDepartmentMismatch, "submissions span 2 departments"),
			status: http.StatusConflict,
			kind:   "department_mismatch",
		},
		{
			name:   "wrapped insufficient data",
			err:    fmt.Errorf("trend: %w", faults.New(faults.KindInsufficientData, "only 2 distinct years available, 3 required", map[string]any{"years": 2})),
			status: http.StatusUnprocessableEntity,
			kind:   "insufficient_data",
		},
		{
			name:   "invalid input",
			err:    faults.Newf(faults.KindInvalidInput, "horizon must be at least 1"),
			status: http.StatusBadRequest,
			kind:   "invalid_input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.RespondFault(rec, discard, tt.err)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}

			var body map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error_kind"] != tt.kind {
				t.Errorf("error_kind = %v, want %s", body["error_kind"], tt.kind)
			}
			if body["message"] == "" {
				t.Error("message missing")
			}
		})
	}
}

func TestRespondFaultPlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondFault(rec, discard, errors.New("connection reset"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}

	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["error"] != "connection reset" {
		t.Errorf("body = %v", body)
	}
}
