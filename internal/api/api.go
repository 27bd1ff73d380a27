// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/auditmarks/internal/config"
	"github.com/JaimeStill/auditmarks/internal/infrastructure"
	"github.com/JaimeStill/auditmarks/pkg/middleware"
	"github.com/JaimeStill/auditmarks/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime.Infrastructure.Logger)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))
	m.Use(middleware.Metrics(runtime.Infrastructure.Registry, "auditmarks"))
	m.Use(middleware.Recover(runtime.Infrastructure.Logger))

	return m, nil
}
