package api

import (
	"github.com/JaimeStill/accredit/internal/config"
	"github.com/JaimeStill/accredit/internal/infrastructure"
	"github.com/JaimeStill/accredit/internal/scoring"
	"github.com/JaimeStill/accredit/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// shared scoring engine.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination     pagination.Config
	Engine         *scoring.Engine
	SnapshotPrefix string
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Registry:  infra.Registry,
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination:     cfg.API.Pagination,
		Engine:         scoring.New(&cfg.Scoring, scoring.NewMetrics(infra.Registry), logger),
		SnapshotPrefix: cfg.Scoring.SnapshotPrefix,
	}
}
