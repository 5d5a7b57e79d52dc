// Package api serves the operational surface of the watcher: health check,
// Prometheus metrics, and a last-cycle status snapshot. It is ops tooling,
// not a user-facing API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"

	"github.com/albapepper/buzzwatch/internal/config"
	"github.com/albapepper/buzzwatch/internal/watch"
)

// StatusProvider exposes the watcher's status snapshot.
type StatusProvider interface {
	Status() watch.Status
}

// NewRouter creates the Chi router with middleware and routes.
func NewRouter(status StatusProvider, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(timingMiddleware)

	c := corslib.New(corslib.Options{
		AllowedOrigins: cfg.CORSAllowOrigins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Process-Time"},
	})
	r.Use(c.Handler)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"service":     "buzzwatch",
			"environment": cfg.Environment,
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, status.Status())
		})
	})

	return r
}

// Serve runs the status server until ctx is cancelled, then shuts down
// gracefully. Intended to be called with `go`.
func Serve(ctx context.Context, cfg *config.Config, status StatusProvider, logger *slog.Logger) {
	addr := fmt.Sprintf("%s:%d", cfg.StatusHost, cfg.StatusPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      NewRouter(status, cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Status server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Status server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Status server shutdown error", "error", err)
	}
	logger.Info("Status server stopped")
}

// timingMiddleware adds X-Process-Time header to all responses.
func timingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		elapsed := time.Since(start)
		w.Header().Set("X-Process-Time", fmt.Sprintf("%.2fms", float64(elapsed.Microseconds())/1000.0))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
