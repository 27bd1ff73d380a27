// Package database opens the PostgreSQL pool through the pgx stdlib driver
// and ties its verification and closing to the service lifecycle.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/auditmarks/pkg/lifecycle"
)

// System exposes the shared connection pool.
type System interface {
	Connection() *sql.DB
	// Start registers a startup ping and a shutdown close with lc.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
}

// New configures the pool from cfg. No connection is made until the
// startup hook registered by Start pings the server.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn: db,
		logger: logger.With(
			"system", "database",
			"host", cfg.Host,
			"name", cfg.Name,
		),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup("database", d.ping)
	lc.OnShutdown("database", d.close)
	return nil
}

func (d *database) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.connTimeout)
	defer cancel()

	start := time.Now()
	if err := d.conn.PingContext(ctx); err != nil {
		d.logger.Error("database unreachable", "error", err, "timeout", d.connTimeout)
		return fmt.Errorf("ping: %w", err)
	}

	d.logger.Info("database ready", "latency", time.Since(start))
	return nil
}

// close waits for in-flight queries to release their connections, bounded
// by the shutdown context.
func (d *database) close(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- d.conn.Close() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close: %w", err)
		}
		stats := d.conn.Stats()
		d.logger.Info("database closed", "open_connections", stats.OpenConnections, "wait_count", stats.WaitCount)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("close: %w", ctx.Err())
	}
}
