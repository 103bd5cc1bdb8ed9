package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-span-search/config"
)

// CreateIndexHandler handles the request to create a new index.
// Request Body: config.IndexSettings
func (api *API) CreateIndexHandler(c *gin.Context) {
	var settings config.IndexSettings

	if result := ValidateJSONBinding(c, &settings); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateIndexSettings(&settings); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := api.engine.CreateIndex(settings); err != nil {
		SendEngineError(c, "create index", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Index '" + settings.Name + "' created successfully"})
}

// ListIndexesHandler lists all available indexes.
func (api *API) ListIndexesHandler(c *gin.Context) {
	names := api.engine.ListIndexes()
	c.JSON(http.StatusOK, gin.H{"indexes": names, "count": len(names)})
}

// GetIndexHandler retrieves the settings of a specific index.
func (api *API) GetIndexHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	settings, err := api.engine.GetIndexSettings(indexName)
	if err != nil {
		SendEngineError(c, "get index", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// DeleteIndexHandler handles deleting an index.
func (api *API) DeleteIndexHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	if err := api.engine.DeleteIndex(indexName); err != nil {
		SendEngineError(c, "delete index", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Index '" + indexName + "' deleted successfully"})
}

// RenameIndexRequest defines the structure for renaming an index
type RenameIndexRequest struct {
	NewName string `json:"new_name" binding:"required"`
}

// RenameIndexHandler handles requests to rename an index
func (api *API) RenameIndexHandler(c *gin.Context) {
	oldName := c.Param("indexName")

	var req RenameIndexRequest
	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateRenameRequest(oldName, req.NewName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := api.engine.RenameIndex(oldName, req.NewName); err != nil {
		SendEngineError(c, "rename index", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Index renamed successfully",
		"old_name": oldName,
		"new_name": req.NewName,
	})
}

// GetIndexStatsHandler returns statistics for a specific index
func (api *API) GetIndexStatsHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendIndexNotFoundError(c, indexName)
		return
	}

	settings := indexAccessor.Settings()
	stats := indexAccessor.Stats()
	c.JSON(http.StatusOK, gin.H{
		"name":                   stats.Name,
		"document_count":         stats.DocumentCount,
		"segments":               stats.Segments,
		"max_doc":                stats.MaxDoc,
		"deleted_documents":      stats.DeletedDocuments,
		"searchable_fields":      settings.SearchableFields,
		"position_increment_gap": settings.PositionIncrementGap,
	})
}
