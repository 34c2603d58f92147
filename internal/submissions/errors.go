package submissions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/accredit/internal/explain"
	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/pkg/repository"
	"github.com/JaimeStill/accredit/pkg/storage"
)

// Domain errors for submission operations.
var (
	ErrNotFound        = errors.New("submission not found")
	ErrDuplicate       = errors.New("submission already exists")
	ErrKPINotFound     = errors.New("kpi not found in submission")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrSnapshotMissing = errors.New("evidence snapshot unavailable")
)

var dbErrors = repository.Errors{
	NotFound:  ErrNotFound,
	Duplicate: ErrDuplicate,
	Invalid:   ErrInvalidRequest,
}

// MapHTTPStatus maps submission domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrKPINotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrSnapshotMissing) || errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, explain.ErrEvidenceUnavailable) {
		return http.StatusConflict
	}
	if _, ok := faults.As(err); ok {
		return faults.MapHTTPStatus(err)
	}
	return http.StatusInternalServerError
}
