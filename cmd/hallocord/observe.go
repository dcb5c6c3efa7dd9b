package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/hallocord/pkg/gateway"
)

// clientView is the part of the client the observability endpoints read.
type clientView interface {
	Status() gateway.Status
	Latency() []time.Duration
}

// observer serves /metrics, /healthz and /debug/latency.
type observer struct {
	srv    *http.Server
	logger *slog.Logger
}

func newRouter(client clientView, gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := client.Status()
		code := http.StatusOK
		if status != gateway.StatusOpen {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]string{"status": status.String()})
	})

	r.Get("/debug/latency", func(w http.ResponseWriter, r *http.Request) {
		samples := client.Latency()
		ms := make([]float64, len(samples))
		for i, d := range samples {
			ms[i] = float64(d) / float64(time.Millisecond)
		}
		writeJSON(w, http.StatusOK, map[string]any{"latency_ms": ms})
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func startObserver(addr string, handler http.Handler, logger *slog.Logger) *observer {
	o := &observer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
	go func() {
		if err := o.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return o
}

func (o *observer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.srv.Shutdown(ctx); err != nil {
		o.logger.Warn("metrics server shutdown", "error", err)
	}
}
