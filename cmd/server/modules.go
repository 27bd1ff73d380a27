package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/auditmarks/internal/api"
	"github.com/JaimeStill/auditmarks/internal/config"
	"github.com/JaimeStill/auditmarks/internal/infrastructure"
	"github.com/JaimeStill/auditmarks/pkg/handlers"
	"github.com/JaimeStill/auditmarks/pkg/module"
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

	router.HandleNative("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))

	router.HandleNative("GET /readyz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, code := "ready", http.StatusOK
		if !infra.Lifecycle.Ready() {
			status, code = "not ready", http.StatusServiceUnavailable
		}
		handlers.RespondJSON(w, code, map[string]any{
			"status": status,
			"checks": infra.Lifecycle.Checks(),
		})
	}))

	router.HandleNative("GET /metrics", promhttp.HandlerFor(
		infra.Registry,
		promhttp.HandlerOpts{Registry: infra.Registry},
	))

	return router
}
