package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	lifegraph "github.com/lifegraph-ai/lifegraph"
	"github.com/lifegraph-ai/lifegraph/pkg/server/dto"
)

// IngestHandler handles write-side requests.
type IngestHandler struct {
	engine *lifegraph.Engine
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(engine *lifegraph.Engine) *IngestHandler {
	return &IngestHandler{engine: engine}
}

// Observe handles POST /api/v1/observe - one streaming entity sighting.
func (h *IngestHandler) Observe(c *gin.Context) {
	var req dto.ObserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Message: err.Error()})
		return
	}

	typ := h.engine.Registry().ResolveNodeType(req.Type)
	node, ok := h.engine.Observe(req.Label, typ, req.Context, req.At())
	if !ok {
		// Noise labels are rejected silently; the request itself is fine.
		c.JSON(http.StatusOK, dto.Result{Success: true, Data: gin.H{"accepted": false}})
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: gin.H{"accepted": true, "node": node}})
}

// IngestText handles POST /api/v1/ingest/text - extract and merge free text.
func (h *IngestHandler) IngestText(c *gin.Context) {
	var req dto.IngestTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Message: err.Error()})
		return
	}

	diff, err := h.engine.IngestText(c.Request.Context(), req.Text, req.Source())
	if err != nil {
		// Extraction failure means "no update", not a server fault worth a 5xx retry storm.
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: "extraction failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: diff})
}

// IngestBatch handles POST /api/v1/ingest/batch - merge a pre-built batch.
func (h *IngestHandler) IngestBatch(c *gin.Context) {
	var req dto.IngestBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Message: err.Error()})
		return
	}

	batch := req.Batch
	diff, err := h.engine.IngestBatch(c.Request.Context(), &batch)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "merge failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: diff})
}

// Decay handles POST /api/v1/maintenance/decay - run a decay pass now.
func (h *IngestHandler) Decay(c *gin.Context) {
	removed := h.engine.Decay(time.Now())
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: gin.H{"removed_edges": removed}})
}
