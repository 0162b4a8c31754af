// Package main is the entrypoint for the incident search web UI.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/cragr/incident-search/internal/config"
	"github.com/cragr/incident-search/internal/i18n"
	"github.com/cragr/incident-search/internal/incidents"
	"github.com/cragr/incident-search/internal/logging"
	"github.com/cragr/incident-search/internal/metrics"
	"github.com/cragr/incident-search/internal/web"
)

func main() {
	port := pflag.String("port", "", "HTTP port to listen on (overrides HTTP_PORT)")
	pflag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.HTTPPort = *port
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("starting incident-search")

	logger.Info("configuration loaded",
		"http_port", cfg.HTTPPort,
		"backend_url", cfg.BackendURL,
		"http_timeout", cfg.HTTPTimeout,
		"default_language", cfg.DefaultLanguage,
	)

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		logger.Error("failed to load translations", "error", err)
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Create incident service client
	client := incidents.NewClient(cfg, logging.WithComponent(logger, "incidents"))

	// Create search page handler
	searchHandler := web.NewHandler(client, bundle, m, cfg.DefaultLanguage, logging.WithComponent(logger, "web"))

	// Create HTTP server
	addr := fmt.Sprintf(":%s", cfg.HTTPPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      web.NewRouter(searchHandler, promhttp.Handler()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("HTTP server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
