// Package handlers provides JSON response helpers shared by domain handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/accredit/internal/faults"
)

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs the error and writes {"error": message} with the given status.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("handler error", "error", err, "status", status)
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// RespondFault writes a structured fault as {error_kind, message, context}.
// Errors that are not faults fall back to RespondError with a 500.
func RespondFault(w http.ResponseWriter, logger *slog.Logger, err error) {
	f, ok := faults.As(err)
	if !ok {
		RespondError(w, logger, http.StatusInternalServerError, err)
		return
	}

	status := faults.MapHTTPStatus(f)
	logger.Warn("request fault", "kind", f.Kind, "message", f.Message, "status", status)
	RespondJSON(w, status, f)
}
