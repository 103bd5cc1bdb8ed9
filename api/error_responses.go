package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/go-span-search/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeIndexNotFound    ErrorCode = "INDEX_NOT_FOUND"
	ErrorCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrorCodeIndexExists      ErrorCode = "INDEX_ALREADY_EXISTS"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeInvalidQuery     ErrorCode = "INVALID_QUERY"
	ErrorCodeSameName         ErrorCode = "SAME_NAME_PROVIDED"
	ErrorCodeRequestTimeout   ErrorCode = "REQUEST_TIMEOUT"

	// Server Error Codes (5xx)
	ErrorCodeInternalError  ErrorCode = "INTERNAL_ERROR"
	ErrorCodeIndexingFailed ErrorCode = "INDEXING_FAILED"
	ErrorCodeSearchFailed   ErrorCode = "SEARCH_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError is the body of every non-2xx response.
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// SendError writes an APIError, tagged with the request id when one was assigned.
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	body := APIError{
		Error:     http.StatusText(statusCode),
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
	if id, ok := c.Get(requestIDKey); ok {
		body.RequestID, _ = id.(string)
	}
	c.JSON(statusCode, body)
}

// SendStructuredValidationError sends a validation error with structured details
func SendStructuredValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{
			Field:   err.Field,
			Message: err.Message,
			Code:    "VALIDATION_ERROR",
		}
	}

	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}

// SendIndexNotFoundError sends a standardized index not found error
func SendIndexNotFoundError(c *gin.Context, indexName string) {
	SendError(c, http.StatusNotFound, ErrorCodeIndexNotFound, "Index '"+indexName+"' not found")
}

// SendDocumentNotFoundError sends a standardized document not found error
func SendDocumentNotFoundError(c *gin.Context, documentID, indexName string) {
	SendError(c, http.StatusNotFound, ErrorCodeDocumentNotFound,
		"Document '"+documentID+"' not found in index '"+indexName+"'")
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid JSON in request body: "+err.Error())
}

// errorMapping is checked in order; the first target err matches wins.
var errorMapping = []struct {
	target error
	status int
	code   ErrorCode
}{
	{internalErrors.ErrIndexNotFound, http.StatusNotFound, ErrorCodeIndexNotFound},
	{internalErrors.ErrDocumentNotFound, http.StatusNotFound, ErrorCodeDocumentNotFound},
	{internalErrors.ErrIndexAlreadyExists, http.StatusConflict, ErrorCodeIndexExists},
	{internalErrors.ErrSameName, http.StatusBadRequest, ErrorCodeSameName},
	{internalErrors.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeInvalidQuery},
	{internalErrors.ErrInvalidInput, http.StatusBadRequest, ErrorCodeValidationFailed},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, ErrorCodeRequestTimeout},
	{context.Canceled, http.StatusServiceUnavailable, ErrorCodeRequestTimeout},
}

// classify maps err to a status and code, falling back to fallback with a 500.
func classify(err error, fallback ErrorCode) (int, ErrorCode) {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, fallback
}

// SendEngineError reports an error returned by an index or document operation.
func SendEngineError(c *gin.Context, operation string, err error) {
	status, code := classify(err, ErrorCodeIndexingFailed)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "Operation failed (" + operation + "): " + message
	}
	SendError(c, status, code, message)
}

// SendQueryError reports an error returned by a _spans or _search call.
// Segment faults and invariant violations map to 500 SEARCH_FAILED.
func SendQueryError(c *gin.Context, indexName string, err error) {
	status, code := classify(err, ErrorCodeSearchFailed)
	switch {
	case code == ErrorCodeIndexNotFound:
		SendIndexNotFoundError(c, indexName)
	case code == ErrorCodeRequestTimeout:
		SendError(c, status, code, "Query on index '"+indexName+"' did not finish in time")
	case status >= http.StatusInternalServerError:
		SendError(c, status, code, "Search failed on index '"+indexName+"': "+err.Error())
	default:
		SendError(c, status, code, err.Error())
	}
}
