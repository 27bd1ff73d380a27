package main

import (
	"time"

	"github.com/JaimeStill/auditmarks/internal/config"
	"github.com/JaimeStill/auditmarks/internal/infrastructure"
)

// Server owns the infrastructure, the mounted modules and the HTTP listener.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"modules", router.Prefixes(),
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start launches the subsystems and the listener. Readiness is reported
// asynchronously once every startup hook has finished; until then /readyz
// answers 503 with the pending checks.
func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go s.awaitReady()
	return nil
}

func (s *Server) awaitReady() {
	start := time.Now()
	if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
		s.infra.Logger.Error("startup incomplete", "error", err, "checks", s.infra.Lifecycle.Checks())
		return
	}
	s.infra.Logger.Info("all subsystems ready", "elapsed", time.Since(start))
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
