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
	"errors"
	"log/slog"
	"net/http"

	"github.com/AleutianAI/vireo/services/graph/graphson"
	"github.com/AleutianAI/vireo/services/graph/traversal"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ServiceVersion is the graph service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for the graph service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// getOrCreateRequestID returns the X-Request-ID header or generates one.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}

// HandleCreateGraph handles POST /v1/graphs.
//
// Response:
//
//	201 Created: GraphInfo
//	400 Bad Request: Validation error or unknown backend
//	409 Conflict: Graph already exists or limit reached
func (h *Handlers) HandleCreateGraph(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCreateGraph")

	var req CreateGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	info, err := h.svc.CreateGraph(c.Request.Context(), req.Name, req.Backend)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "CREATE_FAILED"

		if errors.Is(err, ErrGraphExists) {
			statusCode = http.StatusConflict
			errCode = "GRAPH_EXISTS"
		} else if errors.Is(err, ErrTooManyGraphs) {
			statusCode = http.StatusConflict
			errCode = "GRAPH_LIMIT"
		} else if errors.Is(err, ErrUnknownBackend) {
			statusCode = http.StatusBadRequest
			errCode = "UNKNOWN_BACKEND"
		}

		logger.Warn("Create failed", "graph", req.Name, "error", err)
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}

	c.JSON(http.StatusCreated, info)
}

// HandleListGraphs handles GET /v1/graphs.
func (h *Handlers) HandleListGraphs(c *gin.Context) {
	c.JSON(http.StatusOK, ListGraphsResponse{
		Graphs: h.svc.ListGraphs(c.Request.Context()),
	})
}

// HandleDropGraph handles DELETE /v1/graphs/:name.
func (h *Handlers) HandleDropGraph(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDropGraph")

	name := c.Param("name")
	if err := h.svc.DropGraph(c.Request.Context(), name); err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "DROP_FAILED"
		if errors.Is(err, ErrGraphNotFound) {
			statusCode = http.StatusNotFound
			errCode = "GRAPH_NOT_FOUND"
		}
		logger.Warn("Drop failed", "graph", name, "error", err)
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleLoad handles POST /v1/graphs/:name/load.
//
// The request body is the wire-format document itself, streamed straight
// into the decoder.
//
// Response:
//
//	200 OK: LoadResponse
//	400 Bad Request: Malformed document
//	404 Not Found: Unknown graph
//	409 Conflict: A load is already running against this graph
func (h *Handlers) HandleLoad(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleLoad")

	name := c.Param("name")
	resp, err := h.svc.Load(c.Request.Context(), name, c.Request.Body)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "LOAD_FAILED"

		if errors.Is(err, ErrGraphNotFound) {
			statusCode = http.StatusNotFound
			errCode = "GRAPH_NOT_FOUND"
		} else if errors.Is(err, ErrLoadInProgress) {
			statusCode = http.StatusConflict
			errCode = "LOAD_IN_PROGRESS"
		} else if errors.Is(err, graphson.ErrUnexpectedField) ||
			errors.Is(err, graphson.ErrMalformedRecord) ||
			errors.Is(err, graphson.ErrUnknownVertex) {
			statusCode = http.StatusBadRequest
			errCode = "INVALID_DOCUMENT"
		}

		logger.Warn("Load failed", "graph", name, "error", err)
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleQuery handles POST /v1/graphs/:name/query.
//
// Response:
//
//	200 OK: QueryResponse
//	400 Bad Request: Invalid query
//	404 Not Found: Unknown graph
func (h *Handlers) HandleQuery(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleQuery")

	name := c.Param("name")
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	resp, err := h.svc.Query(c.Request.Context(), name, req)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "QUERY_FAILED"

		if errors.Is(err, ErrGraphNotFound) {
			statusCode = http.StatusNotFound
			errCode = "GRAPH_NOT_FOUND"
		} else if errors.Is(err, ErrInvalidQuery) ||
			errors.Is(err, traversal.ErrNilPredicateValue) {
			statusCode = http.StatusBadRequest
			errCode = "INVALID_QUERY"
		} else if errors.Is(err, traversal.ErrTypeMismatch) {
			statusCode = http.StatusBadRequest
			errCode = "TYPE_MISMATCH"
		}

		logger.Warn("Query failed", "graph", name, "error", err)
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleGetVertex handles GET /v1/graphs/:name/vertices/:id.
func (h *Handlers) HandleGetVertex(c *gin.Context) {
	name := c.Param("name")
	id := c.Param("id")

	view, err := h.svc.GetVertex(c.Request.Context(), name, id)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "VERTEX_FAILED"
		if errors.Is(err, ErrGraphNotFound) {
			statusCode = http.StatusNotFound
			errCode = "GRAPH_NOT_FOUND"
		} else if errors.Is(err, ErrVertexNotFound) {
			statusCode = http.StatusNotFound
			errCode = "VERTEX_NOT_FOUND"
		}
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}

	c.JSON(http.StatusOK, view)
}

// HandleGetVariables handles GET /v1/graphs/:name/variables.
func (h *Handlers) HandleGetVariables(c *gin.Context) {
	name := c.Param("name")

	vars, err := h.svc.GetVariables(c.Request.Context(), name)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "VARIABLES_FAILED"
		if errors.Is(err, ErrGraphNotFound) {
			statusCode = http.StatusNotFound
			errCode = "GRAPH_NOT_FOUND"
		}
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}

	c.JSON(http.StatusOK, VariablesResponse{Variables: vars})
}

// HandleHealth handles GET /v1/graphs/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
		Graphs:  h.svc.GraphCount(),
	})
}

// HandleReady handles GET /v1/graphs/ready.
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ready": true})
}
