package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	lifegraph "github.com/lifegraph-ai/lifegraph"
	"github.com/lifegraph-ai/lifegraph/pkg/config"
	"github.com/lifegraph-ai/lifegraph/pkg/extract"
	"github.com/lifegraph-ai/lifegraph/pkg/persist"
	"github.com/lifegraph-ai/lifegraph/pkg/server"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, extractor extract.Extractor) *server.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := persist.NewFileStore(filepath.Join(t.TempDir(), "graph.json"))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode

	engine, err := lifegraph.New(cfg, lifegraph.Options{
		Extractor: extractor,
		Persister: store,
	})
	require.NoError(t, err)

	srv := server.New(cfg, engine)
	srv.Setup()
	return srv
}

func doJSON(t *testing.T, srv *server.Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, &extract.MockExtractor{})

	for _, path := range []string{"/health", "/ready", "/live", "/health/detailed"} {
		w := doJSON(t, srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestObserveEndpoint(t *testing.T) {
	srv := newTestServer(t, &extract.MockExtractor{})

	w := doJSON(t, srv, http.MethodPost, "/api/v1/observe", map[string]string{
		"label": "Chris Li", "type": "person", "context": "slack",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Accepted bool `json:"accepted"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Accepted)
}

func TestObserveRejectsNoiseQuietly(t *testing.T) {
	srv := newTestServer(t, &extract.MockExtractor{})

	w := doJSON(t, srv, http.MethodPost, "/api/v1/observe", map[string]string{
		"label": "Untitled", "type": "content",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accepted":false`)
}

func TestObserveValidation(t *testing.T) {
	srv := newTestServer(t, &extract.MockExtractor{})

	w := doJSON(t, srv, http.MethodPost, "/api/v1/observe", map[string]string{"label": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestTextEndpoint(t *testing.T) {
	mock := &extract.MockExtractor{Results: []*types.ExtractionResult{{
		Nodes: []types.ExtractedNode{
			{Label: "Chris Li", Type: "person", Confidence: 0.9, Salience: 0.8},
		},
	}}}
	srv := newTestServer(t, mock)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/ingest/text", map[string]string{
		"text": "Chris shipped the release", "source_id": "doc-1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "added_nodes")
	assert.Equal(t, 1, mock.Calls())
}

func TestIngestTextExtractionFailure(t *testing.T) {
	mock := &extract.MockExtractor{Err: assert.AnError}
	srv := newTestServer(t, mock)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/ingest/text", map[string]string{"text": "anything"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestIngestBatchEndpoint(t *testing.T) {
	srv := newTestServer(t, &extract.MockExtractor{})

	batch := map[string]interface{}{
		"batch": map[string]interface{}{
			"nodes": []map[string]interface{}{
				{"label": "Atlas Project", "type": "project", "confidence": 0.8, "salience": 0.6},
				{"label": "Chris Li", "type": "person", "confidence": 0.9, "salience": 0.8},
			},
			"edges": []map[string]interface{}{
				{"source_label": "Chris Li", "target_label": "Atlas Project", "type": "works_on", "weight": 1, "confidence": 0.8},
			},
		},
	}
	w := doJSON(t, srv, http.MethodPost, "/api/v1/ingest/batch", batch)
	require.Equal(t, http.StatusOK, w.Code)

	// The merged graph is visible through the read side.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/graph/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"node_count":2`)
	assert.Contains(t, w.Body.String(), `"edge_count":1`)
}

func TestIngestBatchRejectsEmpty(t *testing.T) {
	srv := newTestServer(t, &extract.MockExtractor{})

	w := doJSON(t, srv, http.MethodPost, "/api/v1/ingest/batch", map[string]interface{}{
		"batch": map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t, &extract.MockExtractor{})

	doJSON(t, srv, http.MethodPost, "/api/v1/observe", map[string]string{
		"label": "Machine Learning", "type": "topic",
	})

	w := doJSON(t, srv, http.MethodGet, "/api/v1/graph/search?q=machine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Machine Learning")

	w = doJSON(t, srv, http.MethodGet, "/api/v1/graph/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv := newTestServer(t, &extract.MockExtractor{})

	for _, label := range []string{"Chris Li", "Atlas Project"} {
		typ := "person"
		if label == "Atlas Project" {
			typ = "project"
		}
		doJSON(t, srv, http.MethodPost, "/api/v1/observe", map[string]string{
			"label": label, "type": typ, "context": "slack",
		})
	}

	for _, path := range []string{
		"/api/v1/analytics/clusters",
		"/api/v1/analytics/centrality",
		"/api/v1/analytics/contradictions",
		"/api/v1/analytics/gaps",
		"/api/v1/insights",
		"/api/v1/types",
	} {
		w := doJSON(t, srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestNodeLookup(t *testing.T) {
	srv := newTestServer(t, &extract.MockExtractor{})

	doJSON(t, srv, http.MethodPost, "/api/v1/observe", map[string]string{
		"label": "Chris Li", "type": "person",
	})

	w := doJSON(t, srv, http.MethodGet, "/api/v1/graph/nodes/person:chris-li", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/graph/nodes/person:nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
