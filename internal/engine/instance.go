package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gcbaptista/go-span-search/config"
	"github.com/gcbaptista/go-span-search/internal/indexing"
	"github.com/gcbaptista/go-span-search/internal/search"
	"github.com/gcbaptista/go-span-search/model"
	"github.com/gcbaptista/go-span-search/services"
	"github.com/gcbaptista/go-span-search/store"
)

// IndexInstance holds all components and services for a single span index.
// It implements the services.IndexAccessor interface.
type IndexInstance struct {
	mu            sync.RWMutex // guards settings.Name
	settings      *config.IndexSettings
	DocumentStore *store.DocumentStore
	indexer       *indexing.Service
	searcher      *search.Service
}

// NewIndexInstance creates and initializes a new IndexInstance.
func NewIndexInstance(settings config.IndexSettings, logger *slog.Logger) (*IndexInstance, error) {
	if settings.Name == "" {
		return nil, fmt.Errorf("index name cannot be empty in settings")
	}

	docStore := store.NewDocumentStore()
	indexerService, err := indexing.NewService(&settings, docStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexer service: %w", err)
	}
	searchService, err := search.NewService(indexerService, docStore, &settings, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}

	return &IndexInstance{
		settings:      &settings,
		DocumentStore: docStore,
		indexer:       indexerService,
		searcher:      searchService,
	}, nil
}

// AddDocuments delegates to the underlying Indexer service.
func (i *IndexInstance) AddDocuments(docs []model.Document) error {
	return i.indexer.AddDocuments(docs)
}

// DeleteAllDocuments delegates to the underlying Indexer service.
func (i *IndexInstance) DeleteAllDocuments() error {
	return i.indexer.DeleteAllDocuments()
}

// DeleteDocument delegates to the underlying Indexer service.
func (i *IndexInstance) DeleteDocument(docID string) error {
	return i.indexer.DeleteDocument(docID)
}

func (i *IndexInstance) GetDocument(docID string) (model.Document, error) {
	return i.indexer.GetDocument(docID)
}

// Search delegates to the underlying search service.
func (i *IndexInstance) Search(ctx context.Context, query services.SearchQuery) (services.SearchResult, error) {
	return i.searcher.Search(ctx, query)
}

// Spans delegates to the underlying search service.
func (i *IndexInstance) Spans(ctx context.Context, query services.SpansQuery) (services.SpansResult, error) {
	return i.searcher.Spans(ctx, query)
}

// Settings returns a copy of the configuration settings for this index.
func (i *IndexInstance) Settings() config.IndexSettings {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return *i.settings
}

// Stats reports document and segment counts.
func (i *IndexInstance) Stats() services.IndexStats {
	segments, maxDoc, deleted := i.indexer.SegmentStats()
	return services.IndexStats{
		Name:             i.Settings().Name,
		DocumentCount:    i.DocumentStore.Len(),
		Segments:         segments,
		MaxDoc:           maxDoc,
		DeletedDocuments: deleted,
	}
}

func (i *IndexInstance) rename(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.settings.Name = name
}
