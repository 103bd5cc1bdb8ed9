package services

import (
	"context"

	"github.com/gcbaptista/go-span-search/config"
	"github.com/gcbaptista/go-span-search/model"
	"github.com/gcbaptista/go-span-search/query"
)

// HitResult represents a single document in the search results.
type HitResult struct {
	Document model.Document `json:"document"`
	Score    float64        `json:"score"` // boost × number of matches, or the constant score
	Freq     int            `json:"freq"`  // number of matches in the document
}

type SearchResult struct {
	Hits     []HitResult `json:"hits"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Query    string      `json:"query"`    // the rewritten query
	Took     int64       `json:"took"`     // milliseconds
	QueryId  string      `json:"query_id"` // unique UUID for this search query
}

// SearchQuery asks for the documents matching a query tree, best first.
type SearchQuery struct {
	Query            query.Node `json:"query"`
	Page             int        `json:"page"`
	PageSize         int        `json:"page_size"`
	RetrivableFields []string   `json:"retrivable_fields,omitempty"` // Optional: subset of document fields to return in results
}

// SpansQuery asks for the raw position matches of a positional query tree.
type SpansQuery struct {
	Query query.Node `json:"query"`
	Limit int        `json:"limit,omitempty"` // 0 means DefaultSpansLimit
}

// SpanMatch is one position match. Start is inclusive and End exclusive.
type SpanMatch struct {
	DocumentID string `json:"document_id"`
	Doc        uint32 `json:"doc"`
	Start      uint32 `json:"start"`
	End        uint32 `json:"end"`
}

type SpansResult struct {
	Field     string      `json:"field"`
	Matches   []SpanMatch `json:"matches"`
	Truncated bool        `json:"truncated"` // more matches exist beyond Limit
	Query     string      `json:"query"`
	Took      int64       `json:"took"`
	QueryId   string      `json:"query_id"`
}

// IndexStats describes the current state of an index.
type IndexStats struct {
	Name             string `json:"name"`
	DocumentCount    int    `json:"document_count"`
	Segments         int    `json:"segments"`
	MaxDoc           uint32 `json:"max_doc"`
	DeletedDocuments uint32 `json:"deleted_documents"`
}

// Indexer defines operations for adding data to an index
type Indexer interface {
	AddDocuments(docs []model.Document) error
	DeleteAllDocuments() error
	DeleteDocument(docID string) error
	GetDocument(docID string) (model.Document, error)
}

// Searcher defines operations for querying an index
type Searcher interface {
	Search(ctx context.Context, query SearchQuery) (SearchResult, error)
	Spans(ctx context.Context, query SpansQuery) (SpansResult, error)
}

// IndexManager manages the lifecycle of indices
type IndexManager interface {
	CreateIndex(settings config.IndexSettings) error
	GetIndex(name string) (IndexAccessor, error) // IndexAccessor combines Indexer and Searcher
	GetIndexSettings(name string) (config.IndexSettings, error)
	RenameIndex(oldName, newName string) error
	DeleteIndex(name string) error
	ListIndexes() []string
}

type IndexAccessor interface {
	Indexer
	Searcher
	Settings() config.IndexSettings
	Stats() IndexStats
}
