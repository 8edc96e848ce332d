package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	lifegraph "github.com/lifegraph-ai/lifegraph"
	"github.com/lifegraph-ai/lifegraph/pkg/server/dto"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// RetrieveHandler handles read-side requests: graph lookups and analytics.
type RetrieveHandler struct {
	engine *lifegraph.Engine
}

// NewRetrieveHandler creates a new retrieve handler
func NewRetrieveHandler(engine *lifegraph.Engine) *RetrieveHandler {
	return &RetrieveHandler{engine: engine}
}

// Stats handles GET /api/v1/graph/stats
func (h *RetrieveHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: h.engine.Stats()})
}

// Search handles GET /api/v1/graph/search?q=...&type=...&limit=...
func (h *RetrieveHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "missing query", Message: "q parameter is required"})
		return
	}
	typ := types.NodeType(c.Query("type"))
	limit := intQuery(c, "limit", 20)

	nodes := h.engine.Search(query, typ, limit)
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: nodes})
}

// GetNode handles GET /api/v1/graph/nodes/:id
func (h *RetrieveHandler) GetNode(c *gin.Context) {
	node, ok := h.engine.Node(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "node not found"})
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: node})
}

// Clusters handles GET /api/v1/analytics/clusters
func (h *RetrieveHandler) Clusters(c *gin.Context) {
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: h.engine.Clusters()})
}

// Centrality handles GET /api/v1/analytics/centrality?top=...
func (h *RetrieveHandler) Centrality(c *gin.Context) {
	top := intQuery(c, "top", 10)
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: h.engine.Centrality(top)})
}

// Contradictions handles GET /api/v1/analytics/contradictions
func (h *RetrieveHandler) Contradictions(c *gin.Context) {
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: h.engine.Contradictions()})
}

// Gaps handles GET /api/v1/analytics/gaps
func (h *RetrieveHandler) Gaps(c *gin.Context) {
	gaps, isolated := h.engine.Gaps()
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: gin.H{
		"gaps":           gaps,
		"isolated_nodes": isolated,
	}})
}

// Insights handles GET /api/v1/insights
func (h *RetrieveHandler) Insights(c *gin.Context) {
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: h.engine.Insights()})
}

// Types handles GET /api/v1/types
func (h *RetrieveHandler) Types(c *gin.Context) {
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: gin.H{
		"node_types": h.engine.Registry().NodeTypes(),
		"edge_types": h.engine.Registry().EdgeTypes(),
	}})
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
