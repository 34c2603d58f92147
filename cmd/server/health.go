package main

import (
	"context"
	"net/http"
	"time"

	"github.com/JaimeStill/accredit/pkg/handlers"
)

const probeTimeout = 2 * time.Second

// prober is the slice of the lifecycle coordinator the readiness endpoint
// needs.
type prober interface {
	Ready() bool
	Probe(ctx context.Context) map[string]error
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthz(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz reports 503 until startup hooks finish, then runs every
// registered dependency check and reports each by name.
func readyz(p prober) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !p.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, readiness{Status: "starting"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		body := readiness{Status: "ready", Checks: map[string]string{}}
		status := http.StatusOK
		for name, err := range p.Probe(ctx) {
			if err != nil {
				body.Checks[name] = err.Error()
				body.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			body.Checks[name] = "ok"
		}

		handlers.RespondJSON(w, status, body)
	}
}
