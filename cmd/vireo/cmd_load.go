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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/vireo/services/graph"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	loadBatchSize int
	loadBackend   string
	loadJSONOut   bool
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

// loadCmd decodes a graph document into a stored graph.
var loadCmd = &cobra.Command{
	Use:   "load GRAPH FILE",
	Short: "Load a JSON graph document into a graph",
	Long: `Decode a streamed JSON graph document into the named graph,
creating the graph if it does not exist. Pass "-" as FILE to read
from stdin.

Mutations are committed in batches; a malformed document rolls back
the in-flight batch but keeps earlier committed batches.

Examples:
  vireo load social modern.json
  vireo load social - < modern.json
  vireo load scratch modern.json --backend memory --json`,
	Args: cobra.ExactArgs(2),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().IntVar(&loadBatchSize, "batch-size", 0,
		"Mutations per commit (overrides config)")
	loadCmd.Flags().StringVar(&loadBackend, "backend", "",
		"Backend for a newly created graph: memory, badger")
	loadCmd.Flags().BoolVar(&loadJSONOut, "json", false,
		"Output load stats as JSON")

	rootCmd.AddCommand(loadCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name, file := args[0], args[1]

	var src io.Reader
	if file == "-" {
		src = os.Stdin
	} else {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("open document: %w", err)
		}
		defer f.Close()
		src = f
	}

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if _, err := svc.CreateGraph(ctx, name, loadBackend); err != nil &&
		!errors.Is(err, graph.ErrGraphExists) {
		return fmt.Errorf("create graph %q: %w", name, err)
	}

	resp, err := svc.Load(ctx, name, src)
	if err != nil {
		return fmt.Errorf("load %q: %w", name, err)
	}

	if loadJSONOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	fmt.Printf("Loaded %s: %d vertices, %d edges in %dms\n",
		name, resp.Vertices, resp.Edges, resp.DurationMs)
	return nil
}

// openService builds a graph service from the CLI config.
//
// Shared by the load, query, and watch commands, which operate on
// the local data directory without a running server.
func openService() (*graph.Service, error) {
	svcCfg, err := serviceConfig()
	if err != nil {
		return nil, err
	}
	if loadBatchSize > 0 {
		svcCfg.BatchSize = loadBatchSize
	}
	return graph.NewService(svcCfg), nil
}
