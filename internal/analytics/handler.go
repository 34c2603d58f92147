package analytics

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/internal/submissions"
	"github.com/JaimeStill/accredit/pkg/handlers"
	"github.com/JaimeStill/accredit/pkg/routes"
)

// Handler provides HTTP endpoints for the analytics views.
type Handler struct {
	sys         System
	logger      *slog.Logger
	maxBodySize int64
}

// NewHandler creates a Handler with the given system, logger, and body size limit.
func NewHandler(sys System, logger *slog.Logger, maxBodySize int64) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "analytics"),
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for analytics endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analytics",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/compare", Handler: h.Compare},
			{Method: "POST", Pattern: "/trend", Handler: h.Trend},
			{Method: "POST", Pattern: "/forecast", Handler: h.Forecast},
		},
	}
}

// Compare lines up submissions KPI by KPI.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.sys.Compare(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Trend returns the year-over-year series for one KPI.
func (h *Handler) Trend(w http.ResponseWriter, r *http.Request) {
	var req TrendRequest
	if !h.decode(w, r, &req) {
		return
	}

	t, err := h.sys.Trend(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, t)
}

// Forecast projects one KPI forward. A series too short to fit returns 200
// with a null prediction and the reason.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	var req ForecastRequest
	if !h.decode(w, r, &req) {
		return
	}

	f, err := h.sys.Forecast(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, f)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		handlers.RespondFault(w, h.logger, faults.New(
			faults.KindInvalidInput,
			"request body is not valid JSON: "+err.Error(),
			nil,
		))
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if _, ok := faults.As(err); ok {
		handlers.RespondFault(w, h.logger, err)
		return
	}
	status := http.StatusInternalServerError
	if errors.Is(err, submissions.ErrNotFound) {
		status = http.StatusNotFound
	}
	handlers.RespondError(w, h.logger, status, err)
}
