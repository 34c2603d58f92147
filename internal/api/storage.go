package api

import (
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/google/uuid"

	"github.com/JaimeStill/accredit/pkg/handlers"
	"github.com/JaimeStill/accredit/pkg/routes"
	"github.com/JaimeStill/accredit/pkg/storage"
)

// evidenceHandler serves the evidence snapshots kept for each submission,
// exactly as they were scored.
type evidenceHandler struct {
	store  storage.System
	logger *slog.Logger
	prefix string
}

func newEvidenceHandler(
	store storage.System,
	logger *slog.Logger,
	prefix string,
) *evidenceHandler {
	return &evidenceHandler{
		store:  store,
		logger: logger.With("handler", "evidence"),
		prefix: prefix,
	}
}

func (h *evidenceHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/evidence",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.download},
			{Method: "HEAD", Pattern: "/{id}", Handler: h.exists},
		},
	}
}

func (h *evidenceHandler) key(r *http.Request) (string, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return "", err
	}
	return path.Join(h.prefix, id.String()+".json"), nil
}

func (h *evidenceHandler) download(w http.ResponseWriter, r *http.Request) {
	key, err := h.key(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}

func (h *evidenceHandler) exists(w http.ResponseWriter, r *http.Request) {
	key, err := h.key(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ok, err := h.store.Exists(r.Context(), key)
	switch {
	case err != nil:
		h.logger.Error("evidence lookup failed", "key", key, "error", err)
		w.WriteHeader(storage.MapHTTPStatus(err))
	case !ok:
		w.WriteHeader(http.StatusNotFound)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	}
}
