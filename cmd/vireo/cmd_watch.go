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
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/vireo/services/graph"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	watchSettle time.Duration
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

// watchCmd loads graph documents as they appear in a directory.
var watchCmd = &cobra.Command{
	Use:   "watch GRAPH DIR",
	Short: "Load graph documents dropped into a directory",
	Long: `Watch a directory and load every .json document written to it
into the named graph. Runs until interrupted.

Documents are loaded after a short settle delay so producers can
finish writing. A document that fails to decode is logged and
skipped; earlier committed batches from it remain.

Examples:
  vireo watch social ./incoming
  vireo watch social /var/spool/vireo --settle 2s`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 500*time.Millisecond,
		"Delay between the last write event and the load")

	rootCmd.AddCommand(watchCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	name, dir := args[0], args[1]

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if _, err := svc.CreateGraph(ctx, name, ""); err != nil &&
		!errors.Is(err, graph.ErrGraphExists) {
		return fmt.Errorf("open graph %q: %w", name, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	slog.Info("Watching for graph documents",
		slog.String("graph", name),
		slog.String("dir", dir))

	// pending maps a document path to its settle timer. A new write
	// event resets the timer so a half-written file isn't decoded.
	pending := make(map[string]*time.Timer)
	loads := make(chan string)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}
			path := event.Name
			if timer, ok := pending[path]; ok {
				timer.Reset(watchSettle)
				continue
			}
			pending[path] = time.AfterFunc(watchSettle, func() {
				loads <- path
			})

		case path := <-loads:
			delete(pending, path)
			loadDocument(ctx, svc, name, path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

// loadDocument decodes a single document file into the graph.
func loadDocument(ctx context.Context, svc *graph.Service, name, path string) {
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("open document failed", "path", path, "error", err)
		return
	}
	defer f.Close()

	resp, err := svc.Load(ctx, name, f)
	if err != nil {
		slog.Warn("load failed", "path", path, "error", err)
		return
	}
	slog.Info("document loaded",
		slog.String("path", path),
		slog.Int("vertices", resp.Vertices),
		slog.Int("edges", resp.Edges),
		slog.Int64("duration_ms", resp.DurationMs))
}
