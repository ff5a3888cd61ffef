package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"regform/pkg/platform/httputil"
)

// Recovery turns a handler panic into a generic 500.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "panic recovered",
					"request_id", GetRequestID(r.Context()),
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: httputil.InternalErrorMessage})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
