// Package server exposes the engine over HTTP using gin: streaming
// observations, text/batch ingest, graph reads, and analytics.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	lifegraph "github.com/lifegraph-ai/lifegraph"
	"github.com/lifegraph-ai/lifegraph/pkg/config"
	"github.com/lifegraph-ai/lifegraph/pkg/server/handlers"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	engine *lifegraph.Engine
	server *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, engine *lifegraph.Engine) *Server {
	return &Server{
		config: cfg,
		engine: engine,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	// Set gin mode
	gin.SetMode(s.config.Server.Mode)

	// Create router
	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// Router returns the underlying gin router, e.g. for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(s.engine)
	ingestHandler := handlers.NewIngestHandler(s.engine)
	retrieveHandler := handlers.NewRetrieveHandler(s.engine)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck) // Kubernetes liveness probe
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/observe", ingestHandler.Observe)

		ingest := v1.Group("/ingest")
		{
			ingest.POST("/text", ingestHandler.IngestText)
			ingest.POST("/batch", ingestHandler.IngestBatch)
		}

		v1.POST("/maintenance/decay", ingestHandler.Decay)

		graph := v1.Group("/graph")
		{
			graph.GET("/stats", retrieveHandler.Stats)
			graph.GET("/search", retrieveHandler.Search)
			graph.GET("/nodes/:id", retrieveHandler.GetNode)
		}

		analytics := v1.Group("/analytics")
		{
			analytics.GET("/clusters", retrieveHandler.Clusters)
			analytics.GET("/centrality", retrieveHandler.Centrality)
			analytics.GET("/contradictions", retrieveHandler.Contradictions)
			analytics.GET("/gaps", retrieveHandler.Gaps)
		}

		v1.GET("/insights", retrieveHandler.Insights)
		v1.GET("/types", retrieveHandler.Types)
	}
}

// Start starts the server
func (s *Server) Start() error {
	fmt.Printf("Starting server on %s\n", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println("Stopping server...")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextMiddleware extracts context information from headers
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		sessionID := c.GetHeader("X-Session-ID")
		if sessionID != "" {
			ctx = context.WithValue(ctx, types.ContextKeySessionID, sessionID)
		}

		sourceID := c.GetHeader("X-Source-ID")
		if sourceID != "" {
			ctx = context.WithValue(ctx, types.ContextKeySourceID, sourceID)
		}

		ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
