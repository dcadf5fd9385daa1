package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dErrors "grunnlag/pkg/domain-errors"
	"grunnlag/pkg/platform/httputil"
)

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// New builds an HTTP server with the timeouts used by every grunnlag process.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// NewRouter mounts the module routes next to /health and /metrics. CORS is
// enabled only when allowedOrigins is non-empty.
func NewRouter(checks map[string]HealthCheck, allowedOrigins []string, modules ...Registrar) chi.Router {
	r := chi.NewRouter()
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id", "Nav-Saksbehandler"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	r.Get("/health", healthHandler(checks))
	r.Handle("/metrics", promhttp.Handler())
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{}
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status[name] = "unavailable"
				healthy = false
				continue
			}
			status[name] = "ok"
		}
		if !healthy {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "dependency unavailable"))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "checks": status})
	}
}
