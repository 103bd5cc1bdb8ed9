package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gcbaptista/go-span-search/services"
)

// DefaultSearchTimeout bounds a single _search or _spans request.
const DefaultSearchTimeout = 30 * time.Second

// API holds dependencies for API handlers, primarily the index manager.
type API struct {
	engine        services.IndexManager
	logger        *slog.Logger
	searchTimeout time.Duration
}

// Option configures the API.
type Option func(*API)

func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithSearchTimeout overrides DefaultSearchTimeout. Non-positive values are ignored.
func WithSearchTimeout(d time.Duration) Option {
	return func(a *API) {
		if d > 0 {
			a.searchTimeout = d
		}
	}
}

// NewAPI creates a new API handler structure.
func NewAPI(engine services.IndexManager, opts ...Option) *API {
	a := &API{
		engine:        engine,
		logger:        slog.Default(),
		searchTimeout: DefaultSearchTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetupRoutes defines all the API routes for the span search server.
func SetupRoutes(router *gin.Engine, engine services.IndexManager, opts ...Option) {
	apiHandler := NewAPI(engine, opts...)

	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Index management routes
	indexRoutes := router.Group("/indexes")
	{
		indexRoutes.POST("", apiHandler.CreateIndexHandler)                   // Create a new index
		indexRoutes.GET("", apiHandler.ListIndexesHandler)                    // List all indexes
		indexRoutes.GET("/:indexName", apiHandler.GetIndexHandler)            // Get index settings
		indexRoutes.DELETE("/:indexName", apiHandler.DeleteIndexHandler)      // Delete an index
		indexRoutes.POST("/:indexName/rename", apiHandler.RenameIndexHandler) // Rename an index
		indexRoutes.GET("/:indexName/stats", apiHandler.GetIndexStatsHandler) // Get index statistics

		// Document management routes per index
		docRoutes := indexRoutes.Group("/:indexName/documents")
		{
			docRoutes.PUT("", apiHandler.AddDocumentsHandler)                  // Add/Update documents
			docRoutes.DELETE("", apiHandler.DeleteAllDocumentsHandler)         // Delete all documents
			docRoutes.GET("/:documentId", apiHandler.GetDocumentHandler)       // Get specific document
			docRoutes.DELETE("/:documentId", apiHandler.DeleteDocumentHandler) // Delete specific document
		}

		// Query routes per index
		indexRoutes.POST("/:indexName/_spans", apiHandler.SpansHandler)
		indexRoutes.POST("/:indexName/_search", apiHandler.SearchHandler)
	}
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "go-span-search",
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	})
}
