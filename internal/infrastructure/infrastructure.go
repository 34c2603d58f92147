// Package infrastructure wires the shared systems every domain module runs
// on: the lifecycle coordinator, the service logger, the metrics registry,
// the Postgres pool and evidence blob storage.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/accredit/internal/config"
	"github.com/JaimeStill/accredit/pkg/database"
	"github.com/JaimeStill/accredit/pkg/lifecycle"
	"github.com/JaimeStill/accredit/pkg/storage"
)

type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Registry  *prometheus.Registry
	Database  database.System
	Storage   storage.System
}

// New builds every system without connecting to anything. Start registers
// their hooks with the coordinator.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(cfg.Logging.Handler(os.Stderr)).With("service", "accredit", "version", cfg.Version)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Registry:  registry,
		Database:  db,
		Storage:   store,
	}, nil
}

// Start hooks the database and storage into the coordinator. Each also
// registers a readiness check.
func (i *Infrastructure) Start() error {
	systems := []struct {
		name  string
		start func(*lifecycle.Coordinator) error
	}{
		{"database", i.Database.Start},
		{"storage", i.Storage.Start},
	}
	for _, s := range systems {
		if err := s.start(i.Lifecycle); err != nil {
			return fmt.Errorf("start %s: %w", s.name, err)
		}
	}
	return nil
}
