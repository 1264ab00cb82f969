package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"library/internal/httputil"
)

// ErrorResponder writes an error body in a server's error format
type ErrorResponder func(w http.ResponseWriter, status int, message string)

// Recovery recovers from panics and answers 500 with an RFC 7807 body
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return RecoveryWith(logger, httputil.RespondError)
}

// RecoveryWith recovers from panics and answers 500 through respond
func RecoveryWith(logger *slog.Logger, respond ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"stack", string(debug.Stack()),
					)

					respond(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
