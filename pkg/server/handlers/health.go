package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	lifegraph "github.com/lifegraph-ai/lifegraph"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	engine *lifegraph.Engine
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(engine *lifegraph.Engine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "lifegraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready - the engine must be wired and able to
// serve a stats read.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if h.engine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  "engine not initialized",
		})
		return
	}

	start := time.Now()
	stats := h.engine.Stats()

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"service":   "lifegraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": gin.H{
			"graph": gin.H{
				"status":   "healthy",
				"nodes":    stats.NodeCount,
				"edges":    stats.EdgeCount,
				"duration": time.Since(start).String(),
			},
		},
	})
}

// LivenessCheck handles GET /live - Kubernetes liveness probe
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck handles GET /health/detailed
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := gin.H{
		"status":    "healthy",
		"service":   "lifegraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"build": gin.H{
			"version":    Version,
			"git_commit": GitCommit,
			"build_time": BuildTime,
			"go_version": GoVersion,
		},
		"runtime": gin.H{
			"goroutines":  runtime.NumGoroutine(),
			"alloc_bytes": m.Alloc,
			"num_gc":      m.NumGC,
		},
	}
	if h.engine != nil {
		response["graph"] = h.engine.Stats()
	}
	c.JSON(http.StatusOK, response)
}
