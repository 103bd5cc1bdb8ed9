package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/go-span-search/internal/errors"
	"github.com/gcbaptista/go-span-search/model"
)

// AddDocumentsHandler handles adding/updating documents in an index.
// The body is a single document object or an array of them.
func (api *API) AddDocumentsHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendIndexNotFoundError(c, indexName)
		return
	}

	var rawData interface{}
	if err := c.ShouldBindJSON(&rawData); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	var docs []model.Document
	switch data := rawData.(type) {
	case []interface{}:
		docs = make([]model.Document, len(data))
		for i, item := range data {
			docMap, isMap := item.(map[string]interface{})
			if !isMap {
				SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed,
					fmt.Sprintf("Document at index %d is not a valid object", i))
				return
			}
			docs[i] = docMap
		}
	case map[string]interface{}:
		docs = []model.Document{data}
	default:
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed,
			"Invalid request body. Expecting a document object or an array of documents")
		return
	}

	if result := ValidateDocuments(docs); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := indexAccessor.AddDocuments(docs); err != nil {
		SendEngineError(c, "add documents", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%d document(s) added/updated in index '%s'", len(docs), indexName)})
}

// DeleteAllDocumentsHandler handles the request to delete all documents from an index.
func (api *API) DeleteAllDocumentsHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendIndexNotFoundError(c, indexName)
		return
	}

	if err := indexAccessor.DeleteAllDocuments(); err != nil {
		SendEngineError(c, "delete all documents", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All documents deleted from index '" + indexName + "'"})
}

// GetDocumentHandler retrieves a specific document by ID
func (api *API) GetDocumentHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	documentID := c.Param("documentId")

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendIndexNotFoundError(c, indexName)
		return
	}

	document, err := indexAccessor.GetDocument(documentID)
	if err != nil {
		if errors.Is(err, internalErrors.ErrDocumentNotFound) {
			SendDocumentNotFoundError(c, documentID, indexName)
			return
		}
		SendEngineError(c, "get document", err)
		return
	}
	c.JSON(http.StatusOK, document)
}

// DeleteDocumentHandler deletes a specific document by ID
func (api *API) DeleteDocumentHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	documentID := c.Param("documentId")

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendIndexNotFoundError(c, indexName)
		return
	}

	if err := indexAccessor.DeleteDocument(documentID); err != nil {
		if errors.Is(err, internalErrors.ErrDocumentNotFound) {
			SendDocumentNotFoundError(c, documentID, indexName)
			return
		}
		SendEngineError(c, "delete document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document '" + documentID + "' deleted from index '" + indexName + "'"})
}
