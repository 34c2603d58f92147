// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JaimeStill/accredit/internal/config"
	"github.com/JaimeStill/accredit/internal/infrastructure"
	"github.com/JaimeStill/accredit/pkg/middleware"
	"github.com/JaimeStill/accredit/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	limiter := middleware.NewLimiter(&cfg.API.RateLimit)
	sweepIdleClients(runtime, limiter, cfg.API.RateLimit.IdleTTLDuration())

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.RateLimit(&cfg.API.RateLimit, limiter))
	m.Use(middleware.Metrics(middleware.NewHTTPMetrics(runtime.Registry, "accredit")))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))

	return m, nil
}

func sweepIdleClients(runtime *Runtime, limiter *middleware.Limiter, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	ctx := runtime.Lifecycle.Context()
	go func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := limiter.Sweep(); n > 0 {
					runtime.Logger.Debug("rate limiter swept idle clients", "removed", n)
				}
			}
		}
	}()
}
