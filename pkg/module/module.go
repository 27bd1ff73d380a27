package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/auditmarks/pkg/middleware"
)

// Module serves every path under a single-segment prefix. The prefix is
// removed before the request reaches the module's own middleware and router.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
	handler    http.Handler
}

// New creates a Module mounted at prefix (for example "/api"). It panics on
// an empty, relative, or multi-segment prefix.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
		handler:    router,
	}
}

// Prefix returns the mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends mw to the module stack. Middleware added first runs outermost.
func (m *Module) Use(mw middleware.Func) {
	m.middleware.Use(mw)
	m.handler = m.middleware.Apply(m.router)
}

func (m *Module) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	m.handler.ServeHTTP(w, withPath(req, strings.TrimPrefix(req.URL.Path, m.prefix)))
}

// withPath returns a shallow copy of req addressed to path ("/" when empty).
func withPath(req *http.Request, path string) *http.Request {
	if path == "" {
		path = "/"
	}
	u := *req.URL
	u.Path, u.RawPath = path, ""

	out := new(http.Request)
	*out = *req
	out.URL = &u
	return out
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}

