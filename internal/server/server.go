// Package server exposes the HTTP diagnostics and ingestion surface:
// health/status endpoints reading graph stats and provenance chains,
// and a memory ingestion endpoint that feeds the memory store.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"memgraph/internal/graph"
	"memgraph/internal/memstore"
	"memgraph/pkg/logger"
)

// Server wires the HTTP routes to the engine and the memory store
type Server struct {
	engine   *graph.Engine
	memories *memstore.MemoryStore
	logger   *zap.Logger
}

// New creates the HTTP server wiring
func New(engine *graph.Engine, memories *memstore.MemoryStore) *Server {
	return &Server{
		engine:   engine,
		memories: memories,
		logger:   logger.Get(),
	}
}

// Router builds the gin router with all routes registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(s.logger))
	router.Use(gin.Recovery())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		// Graph statistics for the status surface
		api.GET("/graph/stats", func(c *gin.Context) {
			stats, err := s.engine.Stats(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "graph stats unavailable"})
				return
			}
			c.JSON(http.StatusOK, stats)
		})

		// Provenance chain for a memory hash
		api.GET("/graph/provenance/:hash", func(c *gin.Context) {
			hash := c.Param("hash")

			depth := graph.DefaultChainDepth
			if raw := c.Query("depth"); raw != "" {
				parsed, err := strconv.Atoi(raw)
				if err != nil || parsed < 1 {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid depth"})
					return
				}
				depth = parsed
			}

			chain := s.engine.ProvenanceChain(c.Request.Context(), hash, depth)
			c.JSON(http.StatusOK, gin.H{
				"hash":  hash,
				"depth": depth,
				"chain": chain,
			})
		})

		// Store a memory and sync it into the provenance graph
		api.POST("/memories", func(c *gin.Context) {
			var req struct {
				Content    string `json:"content" binding:"required"`
				MemoryType string `json:"memory_type"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			stored, err := s.memories.Store(c.Request.Context(), req.Content, req.MemoryType)
			if err != nil {
				s.logger.Error("Failed to store memory", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store memory"})
				return
			}

			status := http.StatusCreated
			if stored.Duplicate {
				status = http.StatusOK
			}
			c.JSON(status, stored)
		})
	}

	return router
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
