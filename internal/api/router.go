// Package api wires the concierge HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dining-concierge/internal/common/logger"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

type RouterOptions struct {
	DialogHook http.Handler
	ChatRelay  http.Handler
	// Checks are run by /ready, keyed by dependency name.
	Checks map[string]Check
	Logger logger.Logger
}

// NewRouter registers the concierge routes. Either conversation handler may
// be nil, in which case its route is not registered.
func NewRouter(opts RouterOptions) *mux.Router {
	r := mux.NewRouter()
	r.Use(recoveryMiddleware(opts.Logger))
	r.Use(loggingMiddleware(opts.Logger))

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.Handle("/ready", readyHandler(opts.Checks)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if opts.DialogHook != nil {
		r.Handle("/dialog-hook", opts.DialogHook).Methods(http.MethodPost)
	}
	if opts.ChatRelay != nil {
		r.Handle("/chatbot", opts.ChatRelay).Methods(http.MethodPost, http.MethodOptions)
	}
	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func readyHandler(checks map[string]Check) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		failures := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failures[name] = err.Error()
			}
		}
		if len(failures) > 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not ready",
				"checks": failures,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
}

func recoveryMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("http handler panic", map[string]interface{}{
						"path":  r.URL.Path,
						"panic": fmt.Sprint(rec),
					})
					writeJSON(w, http.StatusInternalServerError, map[string]string{
						"error": "Something went wrong. Please try again.",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Debug("http request", map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
