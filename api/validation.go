// Package api exposes span indexes over HTTP.
package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-span-search/config"
	"github.com/gcbaptista/go-span-search/model"
)

// MaxPageSize caps the page size of a search request.
const MaxPageSize = 100

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult collects every problem found in a request.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func newResult() *ValidationResult {
	return &ValidationResult{Valid: true}
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// checkIdentifier records a problem with an index name or document id.
// Identifiers must be non-empty and carry no surrounding whitespace.
func (vr *ValidationResult) checkIdentifier(field, label, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		vr.AddError(field, label+" is required and cannot be blank")
	case strings.TrimSpace(value) != value:
		vr.AddError(field, label+" cannot have leading or trailing whitespace")
	}
}

// ValidateIndexSettings checks a create-index request. Defaults are applied by
// the engine, so zero values are accepted here.
func ValidateIndexSettings(settings *config.IndexSettings) *ValidationResult {
	result := newResult()
	if settings == nil {
		result.AddError("settings", "Index settings are required")
		return result
	}

	result.checkIdentifier("name", "Index name", settings.Name)
	if len(settings.SearchableFields) == 0 {
		result.AddError("searchable_fields", "At least one searchable field is required")
	}
	for _, conflict := range settings.ValidateFieldNames() {
		result.AddError("settings", conflict)
	}
	return result
}

// ValidateDocuments requires a non-empty batch where every document carries a string documentID.
func ValidateDocuments(docs []model.Document) *ValidationResult {
	result := newResult()
	if len(docs) == 0 {
		result.AddError("documents", "No documents provided")
		return result
	}

	for i, doc := range docs {
		field := fmt.Sprintf("documents[%d].documentID", i)
		raw, exists := doc["documentID"]
		if !exists {
			result.AddError(field, "Document must have a 'documentID' field")
			continue
		}
		id, ok := raw.(string)
		if !ok {
			result.AddError(field, "Document ID must be a string")
			continue
		}
		result.checkIdentifier(field, "Document ID", id)
	}
	return result
}

// ValidatePagination applies defaults and caps to pagination parameters.
// Negative values are rejected.
func ValidatePagination(page, pageSize int) (int, int, *ValidationResult) {
	result := newResult()
	if page < 0 {
		result.AddError("page", "Page number cannot be negative")
	}
	if pageSize < 0 {
		result.AddError("page_size", "Page size cannot be negative")
	}

	if page == 0 {
		page = 1
	}
	switch {
	case pageSize == 0:
		pageSize = 10
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return page, pageSize, result
}

// ValidateSpansLimit checks the number of matches requested from _spans.
// Zero selects the server default.
func ValidateSpansLimit(limit, max int) *ValidationResult {
	result := newResult()
	if limit < 0 || limit > max {
		result.AddError("limit", fmt.Sprintf("Limit must be between 0 and %d", max))
	}
	return result
}

// ValidateRenameRequest validates a rename index request
func ValidateRenameRequest(oldName, newName string) *ValidationResult {
	result := newResult()
	result.checkIdentifier("new_name", "New name", newName)
	if oldName == newName {
		result.AddError("new_name", "New name must be different from current name")
	}
	return result
}

// SendValidationError writes result as a 400 response.
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}

// ValidateJSONBinding binds the request body into target.
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := newResult()
	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}
	return result
}
