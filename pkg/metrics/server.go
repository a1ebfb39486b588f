// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves Prometheus metrics over HTTP.
//
// Server is instance-based (not global): create one per process with an
// instance-based registry (prometheus.NewRegistry()) so metrics are
// garbage collected when the server stops.
//
// The server provides a /metrics endpoint for Prometheus scraping and
// gracefully shuts down when the context is cancelled.
type Server struct {
	addr     string
	registry prometheus.Gatherer
	server   *http.Server
	logger   *slog.Logger
}

// NewServer creates a new metrics server.
//
// Pass an instance-based registry (prometheus.NewRegistry()), NOT
// prometheus.DefaultRegisterer.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	server := metrics.NewServer(":9090", registry)
//	go server.Start(ctx)
func NewServer(addr string, registry prometheus.Gatherer) *Server {
	logger := slog.Default().With("component", "metrics-server")

	s := &Server{
		addr:     addr,
		registry: registry,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/", s.handleRoot)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Start starts the HTTP server and blocks until the context is cancelled.
//
// This method should typically be run in a goroutine:
//
//	go server.Start(ctx)
//
// The server performs graceful shutdown when the context is cancelled,
// waiting for active connections to complete (up to a 10-second timeout).
func (s *Server) Start(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		s.logger.Info("Starting metrics server", "addr", s.addr)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Metrics server error", "error", err)
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Metrics server shutting down", "reason", ctx.Err())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Metrics server shutdown error", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		s.logger.Info("Metrics server stopped")
		return nil

	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}
}

// handleRoot provides a simple landing page with link to metrics endpoint.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Metrics</title></head>
<body>
<h1>Metrics</h1>
<p><a href="/metrics">Prometheus Metrics</a></p>
</body>
</html>
`)
}

// Addr returns the address the server is configured to listen on.
func (s *Server) Addr() string {
	return s.addr
}
