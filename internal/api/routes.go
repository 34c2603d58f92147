package api

import (
	"net/http"

	"github.com/JaimeStill/accredit/internal/config"
	"github.com/JaimeStill/accredit/pkg/openapi"
	"github.com/JaimeStill/accredit/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	maxBody := cfg.API.MaxBodySizeBytes()

	evidence := newEvidenceHandler(
		runtime.Storage,
		runtime.Logger,
		runtime.SnapshotPrefix,
	)

	routes.Register(
		mux,
		domain.Submissions.Handler(maxBody).Routes(),
		domain.Analytics.Handler(maxBody).Routes(),
		evidence.routes(),
	)

	doc := buildSpec(cfg)
	if err := doc.Validate(); err != nil {
		return err
	}
	spec, err := openapi.MarshalJSON(doc)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}
