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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	// Set Gin to test mode to reduce noise
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(svc *Service) *gin.Engine {
	router := gin.New()
	handlers := NewHandlers(svc)
	v1 := router.Group("/v1")
	RegisterRoutes(v1, handlers)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req, _ := http.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlers_HandleHealth(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("GET", "/v1/graphs/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", resp.Status)
	}

	if resp.Version != ServiceVersion {
		t.Errorf("expected version %q, got %q", ServiceVersion, resp.Version)
	}
}

func TestHandlers_CreateListDrop(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	w := postJSON(t, router, "/v1/graphs", CreateGraphRequest{Name: "modern"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var info GraphInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if info.Name != "modern" || info.Backend != BackendMemory {
		t.Errorf("unexpected graph info: %+v", info)
	}

	// Duplicate name conflicts.
	w = postJSON(t, router, "/v1/graphs", CreateGraphRequest{Name: "modern"})
	if w.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, w.Code)
	}

	req, _ := http.NewRequest("GET", "/v1/graphs", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	var list ListGraphsResponse
	if err := json.Unmarshal(w2.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(list.Graphs) != 1 {
		t.Errorf("expected 1 graph, got %d", len(list.Graphs))
	}

	req, _ = http.NewRequest("DELETE", "/v1/graphs/modern", nil)
	w3 := httptest.NewRecorder()
	router.ServeHTTP(w3, req)
	if w3.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w3.Code)
	}

	req, _ = http.NewRequest("DELETE", "/v1/graphs/modern", nil)
	w4 := httptest.NewRecorder()
	router.ServeHTTP(w4, req)
	if w4.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w4.Code)
	}
}

func TestHandlers_HandleCreateGraph_UnknownBackend(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	w := postJSON(t, router, "/v1/graphs", CreateGraphRequest{Name: "g", Backend: "cassandra"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func loadModernGraph(t *testing.T, router *gin.Engine) {
	t.Helper()
	doc := `{
		"vertices": [
			{"id": 1, "label": "person", "properties": {"name": "marko", "age": 29}},
			{"id": 2, "label": "person", "properties": {"name": "vadas", "age": 27}},
			{"id": 3, "label": "software", "properties": {"name": "lop", "lang": "java"}}
		],
		"edges": [
			{"id": 7, "label": "knows",
			 "outV": 1, "outVLabel": "person",
			 "inV": 2, "inVLabel": "person",
			 "properties": {"weight": 0.5}}
		]
	}`
	req, _ := http.NewRequest("POST", "/v1/graphs/modern/load", strings.NewReader(doc))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("load failed with status %d: %s", w.Code, w.Body.String())
	}
}

func TestHandlers_HandleLoad(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	w := postJSON(t, router, "/v1/graphs", CreateGraphRequest{Name: "modern"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %s", w.Body.String())
	}
	loadModernGraph(t, router)

	req, _ := http.NewRequest("GET", "/v1/graphs/modern/vertices/1", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w2.Code, w2.Body.String())
	}

	var view VertexView
	if err := json.Unmarshal(w2.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if view.Label != "person" {
		t.Errorf("expected label 'person', got %q", view.Label)
	}
}

func TestHandlers_HandleLoad_BadDocument(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)
	postJSON(t, router, "/v1/graphs", CreateGraphRequest{Name: "modern"})

	req, _ := http.NewRequest("POST", "/v1/graphs/modern/load",
		strings.NewReader(`{"vertices": [], "bogus": true}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Code != "INVALID_DOCUMENT" {
		t.Errorf("expected code INVALID_DOCUMENT, got %q", resp.Code)
	}
}

func TestHandlers_HandleQuery(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)
	postJSON(t, router, "/v1/graphs", CreateGraphRequest{Name: "modern"})
	loadModernGraph(t, router)

	w := postJSON(t, router, "/v1/graphs/modern/query", QueryRequest{
		Has: []HasClause{
			{Key: "age", Predicate: "gt", Value: 28},
		},
		Projection: "values",
		Keys:       []string{"name"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp QueryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("expected 1 result, got %d", resp.Count)
	}
	if resp.Results[0] != "marko" {
		t.Errorf("expected 'marko', got %v", resp.Results[0])
	}
}

func TestHandlers_HandleQuery_LabelAccessor(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)
	postJSON(t, router, "/v1/graphs", CreateGraphRequest{Name: "modern"})
	loadModernGraph(t, router)

	w := postJSON(t, router, "/v1/graphs/modern/query", QueryRequest{
		Has: []HasClause{
			{Key: "~label", Predicate: "eq", Value: "software"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp QueryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("expected 1 result, got %d", resp.Count)
	}
}

func TestHandlers_HandleQuery_InvalidPredicate(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)
	postJSON(t, router, "/v1/graphs", CreateGraphRequest{Name: "modern"})

	w := postJSON(t, router, "/v1/graphs/modern/query", QueryRequest{
		Has: []HasClause{
			{Key: "age", Predicate: "almost", Value: 28},
		},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestHandlers_HandleQuery_NilValueRejected(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)
	postJSON(t, router, "/v1/graphs", CreateGraphRequest{Name: "modern"})

	// nil value is only legal with the existence predicates.
	w := postJSON(t, router, "/v1/graphs/modern/query", QueryRequest{
		Has: []HasClause{
			{Key: "age", Predicate: "eq", Value: nil},
		},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}
}

func TestHandlers_HandleQuery_GraphNotFound(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	w := postJSON(t, router, "/v1/graphs/nope/query", QueryRequest{})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestHandlers_HandleGetVariables(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)
	postJSON(t, router, "/v1/graphs", CreateGraphRequest{Name: "modern"})

	doc := `{"properties": {"creator": "marko"}, "vertices": []}`
	req, _ := http.NewRequest("POST", "/v1/graphs/modern/load", strings.NewReader(doc))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("load failed: %s", w.Body.String())
	}

	req, _ = http.NewRequest("GET", "/v1/graphs/modern/variables", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w2.Code)
	}

	var resp VariablesResponse
	if err := json.Unmarshal(w2.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Variables["creator"] != "marko" {
		t.Errorf("expected creator 'marko', got %v", resp.Variables["creator"])
	}
}
