package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-span-search/config"
	"github.com/gcbaptista/go-span-search/index/indextest"
	"github.com/gcbaptista/go-span-search/internal/engine"
	"github.com/gcbaptista/go-span-search/services"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	SetupRoutes(router, engine.NewEngine(nil))
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// setupPeopleIndex creates the "people" index and loads the five people documents.
func setupPeopleIndex(t *testing.T, router *gin.Engine) {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/indexes", config.IndexSettings{
		Name:             "people",
		SearchableFields: []string{"gender", "first", "last"},
		MaxSegmentDocs:   2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, router, http.MethodPut, "/indexes/people/documents", indextest.PeopleDocuments())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

const sallySmithQuery = `{"query": {"near": {"clauses": [
	{"term": {"field": "first", "value": "sally"}},
	{"mask": {"query": {"term": {"field": "last", "value": "smith"}}, "field": "first"}}
], "slop": -1, "ordered": false}}}`

func TestHealthAndMetrics(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = doRequest(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestCreateIndexHandler(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedCode   ErrorCode
	}{
		{
			name:           "valid index creation",
			requestBody:    config.IndexSettings{Name: "people", SearchableFields: []string{"first", "last"}},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate index",
			requestBody:    config.IndexSettings{Name: "people", SearchableFields: []string{"first"}},
			expectedStatus: http.StatusConflict,
			expectedCode:   ErrorCodeIndexExists,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "missing index name",
			requestBody:    config.IndexSettings{SearchableFields: []string{"first"}},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "negative position gap",
			requestBody:    config.IndexSettings{Name: "gap", PositionIncrementGap: -1},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/indexes", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
			}
		})
	}
}

func TestIndexLifecycleHandlers(t *testing.T) {
	router := setupTestRouter(t)
	setupPeopleIndex(t, router)

	w := doRequest(t, router, http.MethodGet, "/indexes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Indexes []string `json:"indexes"`
		Count   int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []string{"people"}, list.Indexes)

	w = doRequest(t, router, http.MethodGet, "/indexes/people", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var settings config.IndexSettings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, 2, settings.MaxSegmentDocs)

	w = doRequest(t, router, http.MethodGet, "/indexes/people/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		DocumentCount int `json:"document_count"`
		Segments      int `json:"segments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 5, stats.DocumentCount)
	assert.Equal(t, 3, stats.Segments)

	w = doRequest(t, router, http.MethodPost, "/indexes/people/rename", gin.H{"new_name": "people"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodPost, "/indexes/people/rename", gin.H{"new_name": "folks"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, router, http.MethodGet, "/indexes/people", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrorCodeIndexNotFound, decodeError(t, w).Code)

	w = doRequest(t, router, http.MethodDelete, "/indexes/folks", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, router, http.MethodDelete, "/indexes/folks", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentHandlers(t *testing.T) {
	router := setupTestRouter(t)
	setupPeopleIndex(t, router)

	w := doRequest(t, router, http.MethodGet, "/indexes/people/documents/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"documentID":"p1"`)

	w = doRequest(t, router, http.MethodPut, "/indexes/people/documents",
		gin.H{"documentID": "p5", "first": "sally", "last": "smith"})
	assert.Equal(t, http.StatusOK, w.Code, "a single object is accepted")

	w = doRequest(t, router, http.MethodPut, "/indexes/people/documents", []gin.H{{"first": "nobody"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrorCodeValidationFailed, decodeError(t, w).Code)

	w = doRequest(t, router, http.MethodPut, "/indexes/people/documents", `[1, 2]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/indexes/people/documents/p1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/indexes/people/documents/p1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrorCodeDocumentNotFound, decodeError(t, w).Code)

	w = doRequest(t, router, http.MethodDelete, "/indexes/people/documents/p1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/indexes/people/documents", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, router, http.MethodGet, "/indexes/people/documents/p0", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodPut, "/indexes/missing/documents", indextest.PeopleDocuments())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSpansHandler(t *testing.T) {
	router := setupTestRouter(t)
	setupPeopleIndex(t, router)

	w := doRequest(t, router, http.MethodPost, "/indexes/people/_spans", sallySmithQuery)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result services.SpansResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "first", result.Field)
	assert.False(t, result.Truncated)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, services.SpanMatch{DocumentID: "p2", Doc: 2, Start: 1, End: 2}, result.Matches[0])
	assert.Equal(t, services.SpanMatch{DocumentID: "p4", Doc: 4, Start: 0, End: 1}, result.Matches[1])
	assert.NotEmpty(t, result.QueryId)
}

func TestQueryHandlerErrors(t *testing.T) {
	router := setupTestRouter(t)
	setupPeopleIndex(t, router)

	tests := []struct {
		name           string
		path           string
		body           string
		expectedStatus int
		expectedCode   ErrorCode
	}{
		{
			name:           "empty query node",
			path:           "/indexes/people/_spans",
			body:           `{"query": {}}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeInvalidQuery,
		},
		{
			name:           "spans of a constant score query",
			path:           "/indexes/people/_spans",
			body:           `{"query": {"constant_score": {"term": {"field": "first", "value": "sally"}}}}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeInvalidQuery,
		},
		{
			name:           "near across fields",
			path:           "/indexes/people/_search",
			body:           `{"query": {"near": {"clauses": [{"term": {"field": "first", "value": "sally"}}, {"term": {"field": "last", "value": "smith"}}], "slop": 0}}}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeInvalidQuery,
		},
		{
			name:           "limit above maximum",
			path:           "/indexes/people/_spans",
			body:           `{"query": {"term": {"field": "first", "value": "sally"}}, "limit": 1000000}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "negative page",
			path:           "/indexes/people/_search",
			body:           `{"query": {"term": {"field": "first", "value": "sally"}}, "page": -1}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "missing index",
			path:           "/indexes/missing/_search",
			body:           `{"query": {"term": {"field": "first", "value": "sally"}}}`,
			expectedStatus: http.StatusNotFound,
			expectedCode:   ErrorCodeIndexNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
		})
	}
}

func TestSearchHandler(t *testing.T) {
	router := setupTestRouter(t)
	setupPeopleIndex(t, router)

	w := doRequest(t, router, http.MethodPost, "/indexes/people/_search",
		`{"query": {"term": {"field": "last", "value": "jones"}}, "page_size": 2, "retrivable_fields": ["documentID"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result services.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 2, result.PageSize)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "p2", result.Hits[0].Document["documentID"], "two jones in p2")
	assert.Equal(t, 2.0, result.Hits[0].Score)
	assert.Equal(t, 2, result.Hits[0].Freq)
	assert.NotContains(t, result.Hits[0].Document, "first")
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware(), RecoveryMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := doRequest(t, router, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, ErrorCodeInternalError, apiErr.Code)
	assert.NotEmpty(t, apiErr.RequestID)
}
