// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/vireo/pkg/telemetry"
	"github.com/AleutianAI/vireo/services/graph"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	serverPort  int
	serverDebug bool
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

// serverCmd starts the graph API server.
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the graph API server",
	Long: `Start the HTTP server exposing graph management, load, and query
endpoints under /v1/graphs, plus Prometheus metrics on /metrics.

Examples:
  vireo server
  vireo server --port 9090
  vireo server --debug`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0,
		"Port to listen on (overrides config)")
	serverCmd.Flags().BoolVar(&serverDebug, "debug", false,
		"Enable debug mode")

	rootCmd.AddCommand(serverCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runServer builds the service, registers routes, and serves until
// SIGINT or SIGTERM.
func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set Gin mode
	if serverDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.DefaultConfig())
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	svcCfg, err := serviceConfig()
	if err != nil {
		return err
	}
	svc := graph.NewService(svcCfg)
	defer svc.Close()

	handlers := graph.NewHandlers(svc)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	if serverDebug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	graph.RegisterRoutes(v1, handlers)

	if mh := telemetry.MetricsHandler(); mh != nil {
		router.GET("/metrics", gin.WrapH(mh))
	}

	port := cfg.Server.Port
	if serverPort > 0 {
		port = serverPort
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printBanner(port)
	slog.Info("Starting vireo server", slog.String("address", srv.Addr))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down vireo server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// serviceConfig maps the CLI config onto the graph service config.
func serviceConfig() (graph.ServiceConfig, error) {
	svcCfg := graph.DefaultServiceConfig()
	svcCfg.MaxGraphs = cfg.Server.MaxGraphs
	svcCfg.DefaultBackend = cfg.Storage.Backend
	svcCfg.DataDir = expandPath(cfg.Storage.DataDir)
	svcCfg.BatchSize = cfg.Storage.BatchSize
	svcCfg.QueryLimit = cfg.Server.QueryLimit
	svcCfg.Logger = slog.Default()

	if cfg.Server.QueryTimeout != "" {
		timeout, err := time.ParseDuration(cfg.Server.QueryTimeout)
		if err != nil {
			return graph.ServiceConfig{}, fmt.Errorf("invalid query_timeout: %w", err)
		}
		svcCfg.QueryTimeout = timeout
	}
	return svcCfg, nil
}

// printBanner prints the startup banner.
func printBanner(port int) {
	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                          VIREO SERVER                             ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Property graph storage, streaming loads, traversal queries.      ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%-5d/v1/graphs/health                │  ║
║  │                                                             │  ║
║  │ # Create a graph                                            │  ║
║  │ curl -X POST http://localhost:%-5d/v1/graphs \             │  ║
║  │   -d '{"name": "social", "backend": "badger"}'              │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Fprintf(os.Stderr, banner, port, port)
}
