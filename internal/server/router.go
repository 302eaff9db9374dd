// Package server assembles the HTTP handler tree: the Connect service,
// health and metrics endpoints, and the shared middleware.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/service"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// Pinger is implemented by stores that can report whether they are reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures NewRouter.
type Options struct {
	// CORSAllowOrigin is sent as Access-Control-Allow-Origin. Empty disables CORS headers.
	CORSAllowOrigin string

	// Registry receives the RPC metrics and is served on /metrics.
	// Nil disables metrics.
	Registry *prometheus.Registry
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewRouter registers the ExpenseService, /healthz and /metrics.
func NewRouter(store storage.Store, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	if opts.CORSAllowOrigin != "" {
		r.Use(cors(opts.CORSAllowOrigin))
	}

	interceptors := []connect.Interceptor{middleware.LoggingInterceptor()}
	if opts.Registry != nil {
		interceptors = append(interceptors, middleware.NewMetrics(opts.Registry).Interceptor())
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	path, handler := apiconnect.NewExpenseServiceHandler(
		service.NewExpenseService(store),
		connect.WithInterceptors(interceptors...),
	)
	r.Mount(path, handler)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if p, ok := store.(Pinger); ok {
			if err := p.Ping(req.Context()); err != nil {
				slog.Error("Health check failed", "error", err)
				http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}

// requestLogger logs all incoming requests
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// cors adds CORS headers for browser access
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
			w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
