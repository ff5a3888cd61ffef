package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"regform/internal/platform/metrics"
	"regform/internal/platform/middleware"
	"regform/pkg/platform/httputil"
	"regform/pkg/platform/middleware/metadata"
)

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker answers whether the store is reachable.
type HealthChecker interface {
	Count(ctx context.Context) (int, error)
}

// Deps are the collaborators the router wires together.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Health         HealthChecker
	AllowedOrigins []string
	RequestTimeout time.Duration
	Modules        []Registrar
}

// NewRouter applies the shared middleware chain and mounts every module plus
// the /healthz and /metrics endpoints.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.CORS(d.AllowedOrigins))
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}
	if d.Metrics != nil {
		r.Use(middleware.LatencyMiddleware(d.Metrics))
	}

	for _, m := range d.Modules {
		m.Register(r)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if _, err := d.Health.Count(r.Context()); err != nil {
				d.Logger.ErrorContext(r.Context(), "health check failed",
					"request_id", middleware.GetRequestID(r.Context()),
					"error", err.Error(),
				)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{Error: "Method not allowed"})
	})
	return r
}
