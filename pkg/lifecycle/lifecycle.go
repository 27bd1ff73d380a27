// Package lifecycle coordinates named startup and shutdown hooks and reports
// per-subsystem readiness.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Hook is a startup or shutdown step. Startup hooks receive the coordinator
// context; shutdown hooks receive a context bounded by the shutdown timeout.
type Hook func(ctx context.Context) error

// Check states reported by Checks for hooks that have not failed.
const (
	CheckPending = "pending"
	CheckOK      = "ok"
)

type namedHook struct {
	name string
	fn   Hook
}

// Coordinator runs startup hooks concurrently, tracks their outcome, and runs
// shutdown hooks when the service stops.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	startup  sync.WaitGroup
	shutdown []namedHook

	mu     sync.RWMutex
	checks map[string]error
	ready  bool
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
		checks: make(map[string]error),
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup starts fn in its own goroutine and records its result under name.
func (c *Coordinator) OnStartup(name string, fn Hook) {
	c.mu.Lock()
	c.checks[name] = errPending
	c.mu.Unlock()

	c.startup.Go(func() {
		err := fn(c.ctx)
		c.mu.Lock()
		c.checks[name] = err
		c.mu.Unlock()
	})
}

// OnShutdown registers fn to run when Shutdown is called.
func (c *Coordinator) OnShutdown(name string, fn Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = append(c.shutdown, namedHook{name: name, fn: fn})
}

// WaitForStartup blocks until every startup hook returns. The coordinator is
// marked ready only when all of them succeeded; otherwise the joined hook
// errors are returned.
func (c *Coordinator) WaitForStartup() error {
	c.startup.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for name, err := range c.checks {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	c.ready = len(errs) == 0
	return errors.Join(errs...)
}

// Ready reports whether startup completed without failures.
func (c *Coordinator) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Checks returns the state of every startup hook: CheckOK, CheckPending, or
// the error message of a failed hook.
func (c *Coordinator) Checks() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.checks))
	for name, err := range c.checks {
		switch {
		case err == nil:
			out[name] = CheckOK
		case errors.Is(err, errPending):
			out[name] = CheckPending
		default:
			out[name] = err.Error()
		}
	}
	return out
}

// Shutdown cancels the coordinator context and runs every shutdown hook
// concurrently. It returns the first hook error, or a timeout error when the
// hooks do not finish within timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	c.mu.Lock()
	c.ready = false
	hooks := c.shutdown
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var g errgroup.Group
	for _, h := range hooks {
		g.Go(func() error {
			if err := h.fn(ctx); err != nil {
				return fmt.Errorf("%s: %w", h.name, err)
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}

var errPending = errors.New(CheckPending)
