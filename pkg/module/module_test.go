package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JaimeStill/auditmarks/pkg/module"
)

func pathEcho(pattern string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	})
	return mux
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestNew(t *testing.T) {
	for _, prefix := range []string{"/api", "/v1"} {
		assert.Equal(t, prefix, module.New(prefix, http.NewServeMux()).Prefix())
	}

	for _, prefix := range []string{"", "api", "/api/v1"} {
		t.Run("invalid "+prefix, func(t *testing.T) {
			assert.Panics(t, func() { module.New(prefix, http.NewServeMux()) })
		})
	}
}

func TestModuleStripsPrefix(t *testing.T) {
	m := module.New("/api", pathEcho("GET /marks/{id}"))

	rec := serve(m, "GET", "/api/marks/abc")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/marks/abc", rec.Body.String())

	root := module.New("/api", pathEcho("GET /"))
	assert.Equal(t, "/", serve(root, "GET", "/api").Body.String())
}

func TestModuleMiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	m := module.New("/api", pathEcho("GET /marks"))
	m.Use(tag("outer"))
	m.Use(tag("inner"))

	serve(m, "GET", "/api/marks")
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestRouter(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", pathEcho("GET /marks")))
	router.HandleNative("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	t.Run("dispatches to module", func(t *testing.T) {
		assert.Equal(t, "/marks", serve(router, "GET", "/api/marks").Body.String())
	})

	t.Run("trailing slash normalized", func(t *testing.T) {
		assert.Equal(t, "/marks", serve(router, "GET", "/api/marks/").Body.String())
	})

	t.Run("native fallback", func(t *testing.T) {
		assert.Equal(t, "ok", serve(router, "GET", "/healthz").Body.String())
	})

	t.Run("unknown path", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(router, "GET", "/missing").Code)
	})

	t.Run("duplicate mount panics", func(t *testing.T) {
		assert.Panics(t, func() { router.Mount(module.New("/api", http.NewServeMux())) })
	})

	t.Run("prefixes", func(t *testing.T) {
		router.Mount(module.New("/admin", http.NewServeMux()))
		assert.Equal(t, []string{"/admin", "/api"}, router.Prefixes())
	})
}
