// Package middleware provides the HTTP middleware stack shared by service
// modules: CORS, request logging, panic recovery, and request metrics.
package middleware

import "net/http"

// Func wraps an http.Handler with additional behavior.
type Func func(http.Handler) http.Handler

// System manages an ordered stack of HTTP middleware.
type System interface {
	Use(mw Func)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	funcs []Func
}

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(mw Func) {
	s.funcs = append(s.funcs, mw)
}

// Apply wraps handler so the first registered middleware runs outermost.
func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.funcs) - 1; i >= 0; i-- {
		handler = s.funcs[i](handler)
	}
	return handler
}
