// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all graph service routes with the router.
//
// Description:
//
//	Registers all /v1/graphs/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST   /v1/graphs - Create a graph
//	GET    /v1/graphs - List graphs
//	DELETE /v1/graphs/:name - Drop a graph
//	POST   /v1/graphs/:name/load - Load a wire-format document
//	POST   /v1/graphs/:name/query - Run a traversal query
//	GET    /v1/graphs/:name/vertices/:id - Get one vertex
//	GET    /v1/graphs/:name/variables - Get graph variables
//
// Health Endpoints:
//
//	GET /v1/graphs/health - Health check
//	GET /v1/graphs/ready - Readiness check
//
// Example:
//
//	service := graph.NewService(graph.DefaultServiceConfig())
//	handlers := graph.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	graph.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	graphs := rg.Group("/graphs")
	{
		// Graph lifecycle
		graphs.POST("", handlers.HandleCreateGraph)
		graphs.GET("", handlers.HandleListGraphs)
		graphs.DELETE("/:name", handlers.HandleDropGraph)

		// Ingestion and queries
		graphs.POST("/:name/load", handlers.HandleLoad)
		graphs.POST("/:name/query", handlers.HandleQuery)
		graphs.GET("/:name/vertices/:id", handlers.HandleGetVertex)
		graphs.GET("/:name/variables", handlers.HandleGetVariables)

		// Health checks
		graphs.GET("/health", handlers.HandleHealth)
		graphs.GET("/ready", handlers.HandleReady)
	}
}
