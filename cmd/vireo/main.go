// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command vireo manages property graphs from the command line.
//
// Vireo stores graphs as durable badger databases and decodes them
// from streamed JSON documents. It can also run the graph API server.
//
// Usage:
//
//	vireo server
//	vireo load social modern.json
//	vireo query social --has 'age:gt:30' --projection values --keys name
//	vireo watch social ./incoming
//
// Example requests against a running server:
//
//	# Health check
//	curl http://localhost:8080/v1/graphs/health
//
//	# Create a graph
//	curl -X POST http://localhost:8080/v1/graphs \
//	  -H "Content-Type: application/json" \
//	  -d '{"name": "social", "backend": "badger"}'
//
//	# Load a document
//	curl -X POST http://localhost:8080/v1/graphs/social/load \
//	  --data-binary @modern.json
//
//	# Query
//	curl -X POST http://localhost:8080/v1/graphs/social/query \
//	  -H "Content-Type: application/json" \
//	  -d '{"has": [{"key": "age", "predicate": "gt", "value": 30}], "projection": "vertices"}'
package main

import (
	"log"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/vireo/pkg/logging"
)

var (
	cfg Config

	// Global flags
	configPath string
	logLevel   string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "vireo",
	Short: "Property graph storage, loading, and querying",
	Long: `Vireo manages property graphs: durable badger-backed storage,
streaming JSON document loads, and predicate-filtered traversal queries.

Run 'vireo server' to expose the same operations over HTTP.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default ~/.vireo/vireo.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false,
		"Disable stderr logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		logger := logging.New(logging.Config{
			Level:   logging.ParseLevel(level),
			LogDir:  cfg.Logging.LogDir,
			Service: cmd.Name(),
			JSON:    cfg.Logging.JSON,
			Quiet:   quiet,
		})
		slog.SetDefault(logger.Slog())
		return nil
	}
}
