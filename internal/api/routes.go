package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/auditmarks/internal/config"
	"github.com/JaimeStill/auditmarks/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	logger *slog.Logger,
) {
	patterns := routes.Register(
		mux,
		domain.Marks.Handler(cfg.Marks.MaxImportSizeBytes()).Routes(),
		domain.WorkPapers.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	)

	for _, p := range patterns {
		logger.Debug("route registered", "base", cfg.API.BasePath, "pattern", p)
	}
}
