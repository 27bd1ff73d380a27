package api

import (
	"github.com/JaimeStill/auditmarks/internal/config"
	"github.com/JaimeStill/auditmarks/internal/infrastructure"
	"github.com/JaimeStill/auditmarks/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Marks      config.MarksConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Registry:  infra.Registry,
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Marks:      cfg.Marks,
	}
}
