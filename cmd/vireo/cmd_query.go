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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/vireo/services/graph"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	queryHas        []string
	queryKeys       []string
	queryProjection string
	queryLimit      int
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

// queryCmd runs a traversal query against a stored graph.
var queryCmd = &cobra.Command{
	Use:   "query GRAPH",
	Short: "Run a filtered traversal query against a graph",
	Long: `Run a predicate-filtered vertex query against the named graph
and print the results as JSON.

Filter clauses take the form KEY:PREDICATE:VALUE where PREDICATE is
one of eq, neq, gt, gte, lt, lte, within, without. The value is parsed
as JSON, falling back to a plain string. Reserved keys ~id and ~label
match element identity and label.

Projections:
  vertices           - full vertex views (default)
  values             - visible property values for --keys
  properties         - visible property views for --keys
  hidden_values      - hidden property values for --keys
  hidden_properties  - hidden property views for --keys

Examples:
  vireo query social --has 'age:gt:30'
  vireo query social --has '~label:eq:person' --projection values --keys name
  vireo query social --has 'name:within:["marko","josh"]' --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringArrayVar(&queryHas, "has", nil,
		"Filter clause KEY:PREDICATE:VALUE (repeatable)")
	queryCmd.Flags().StringSliceVar(&queryKeys, "keys", nil,
		"Property keys for value/property projections")
	queryCmd.Flags().StringVar(&queryProjection, "projection", "",
		"Result projection: vertices, values, properties, hidden_values, hidden_properties")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0,
		"Maximum results (0 = config default)")

	rootCmd.AddCommand(queryCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]

	req := graph.QueryRequest{
		Keys:       queryKeys,
		Projection: queryProjection,
		Limit:      queryLimit,
	}
	for _, clause := range queryHas {
		has, err := parseHasClause(clause)
		if err != nil {
			return err
		}
		req.Has = append(req.Has, has)
	}

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	// Opening the graph attaches the existing badger files under the
	// data directory.
	if _, err := svc.CreateGraph(ctx, name, ""); err != nil {
		return fmt.Errorf("open graph %q: %w", name, err)
	}

	resp, err := svc.Query(ctx, name, req)
	if err != nil {
		return fmt.Errorf("query %q: %w", name, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// parseHasClause parses a KEY:PREDICATE:VALUE flag value.
//
// The value part is decoded as JSON when possible so numbers, booleans,
// and arrays (for within/without) keep their types.
func parseHasClause(clause string) (graph.HasClause, error) {
	parts := strings.SplitN(clause, ":", 3)
	if len(parts) != 3 {
		return graph.HasClause{}, fmt.Errorf(
			"invalid --has clause %q: want KEY:PREDICATE:VALUE", clause)
	}

	var value any
	if err := json.Unmarshal([]byte(parts[2]), &value); err != nil {
		value = parts[2]
	}
	return graph.HasClause{
		Key:       parts[0],
		Predicate: parts[1],
		Value:     value,
	}, nil
}
