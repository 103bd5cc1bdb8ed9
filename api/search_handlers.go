package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-span-search/internal/search"
	"github.com/gcbaptista/go-span-search/services"
)

// SpansHandler returns the raw position matches of a positional query.
// Request Body: services.SpansQuery
func (api *API) SpansHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendIndexNotFoundError(c, indexName)
		return
	}

	var req services.SpansQuery
	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateSpansLimit(req.Limit, search.MaxSpansLimit); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), api.searchTimeout)
	defer cancel()

	result, err := indexAccessor.Spans(ctx, req)
	if err != nil {
		api.logger.Warn("spans query failed", "index", indexName, "error", err)
		SendQueryError(c, indexName, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchHandler returns the documents matching a query, best score first.
// Request Body: services.SearchQuery
func (api *API) SearchHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendIndexNotFoundError(c, indexName)
		return
	}

	var req services.SearchQuery
	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	page, pageSize, validation := ValidatePagination(req.Page, req.PageSize)
	if validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}
	req.Page, req.PageSize = page, pageSize

	ctx, cancel := context.WithTimeout(c.Request.Context(), api.searchTimeout)
	defer cancel()

	result, err := indexAccessor.Search(ctx, req)
	if err != nil {
		api.logger.Warn("search failed", "index", indexName, "error", err)
		SendQueryError(c, indexName, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
