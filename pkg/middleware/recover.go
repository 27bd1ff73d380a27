package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/JaimeStill/auditmarks/pkg/handlers"
)

// Recover returns middleware that converts a handler panic into a 500 JSON
// error. http.ErrAbortHandler is re-raised so the server can abort the
// connection.
func Recover(logger *slog.Logger) Func {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newRecorder(w)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logger.Error("handler panic",
					"method", r.Method,
					"uri", r.URL.RequestURI(),
					"panic", v,
					"stack", string(debug.Stack()),
				)
				if rec.status != 0 {
					return
				}
				handlers.RespondJSON(rec, http.StatusInternalServerError, map[string]string{
					"error": fmt.Sprintf("internal error: %v", v),
				})
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
