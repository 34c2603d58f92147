package main

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/accredit/internal/api"
	"github.com/JaimeStill/accredit/internal/config"
	"github.com/JaimeStill/accredit/internal/infrastructure"
	"github.com/JaimeStill/accredit/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API: apiModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", healthz)
	router.HandleNative("GET /readyz", readyz(infra.Lifecycle))

	metrics := promhttp.HandlerFor(infra.Registry, promhttp.HandlerOpts{Registry: infra.Registry})
	router.HandleNative("GET /metrics", metrics.ServeHTTP)

	return router
}
