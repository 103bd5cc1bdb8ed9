package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/go-span-search/config"
	"github.com/gcbaptista/go-span-search/index"
	"github.com/gcbaptista/go-span-search/internal/errors"
	"github.com/gcbaptista/go-span-search/internal/metrics"
	"github.com/gcbaptista/go-span-search/query"
	"github.com/gcbaptista/go-span-search/services"
	"github.com/gcbaptista/go-span-search/spans"
	"github.com/gcbaptista/go-span-search/store"
)

const (
	defaultPageSize = 10
	// DefaultSpansLimit is the number of matches returned when a request sets no limit.
	DefaultSpansLimit = 1000
	// MaxSpansLimit caps the number of matches a single request may ask for.
	MaxSpansLimit = 10000
	// spansCheckInterval is the number of matches pulled between cancellation checks.
	spansCheckInterval = 1024
)

// ReaderSource hands out point-in-time readers.
type ReaderSource interface {
	Reader() *index.Reader
}

// Service runs search requests for a single index.
// It fulfills the services.Searcher interface.
type Service struct {
	source        ReaderSource
	documentStore *store.DocumentStore
	settings      *config.IndexSettings
	cache         *RewriteCache
	logger        *slog.Logger
}

// NewService creates a new search Service. Every request runs on a fresh
// reader from source; the rewrite cache is shared by all of them.
func NewService(source ReaderSource, documentStore *store.DocumentStore, settings *config.IndexSettings, logger *slog.Logger) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("reader source cannot be nil")
	}
	if documentStore == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
	if settings == nil {
		return nil, fmt.Errorf("index settings cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	size := settings.RewriteCacheSize
	if size <= 0 {
		size = config.DefaultRewriteCacheSize
	}
	cache, err := NewRewriteCache(size)
	if err != nil {
		return nil, err
	}
	return &Service{
		source:        source,
		documentStore: documentStore,
		settings:      settings,
		cache:         cache,
		logger:        logger.With("index", settings.Name),
	}, nil
}

func (s *Service) searcher() *Searcher {
	return NewSearcher(s.source.Reader(),
		WithRewriteCache(s.cache),
		WithParallelism(s.settings.SearchParallelism),
		WithLogger(s.logger),
	)
}

// Search returns the matching documents, best score first. Documents with
// equal scores keep increasing document order.
func (s *Service) Search(ctx context.Context, q services.SearchQuery) (services.SearchResult, error) {
	startTime := time.Now()
	result, err := s.search(ctx, q, startTime)
	observe("search", startTime, len(result.Hits), err)
	if err != nil {
		s.logger.Debug("search failed", "error", err)
	}
	return result, err
}

func (s *Service) search(ctx context.Context, q services.SearchQuery, startTime time.Time) (services.SearchResult, error) {
	page := q.Page
	if page <= 0 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	built, err := q.Query.Build()
	if err != nil {
		return services.SearchResult{}, err
	}
	searcher := s.searcher()
	rewritten, err := searcher.Rewrite(built)
	if err != nil {
		return services.SearchResult{}, err
	}
	hits, err := searcher.Hits(ctx, rewritten)
	if err != nil {
		return services.SearchResult{}, err
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	totalHits := len(hits)
	startIndex := (page - 1) * pageSize
	endIndex := startIndex + pageSize
	paginatedHits := []services.HitResult{}
	if startIndex < totalHits {
		if endIndex > totalHits {
			endIndex = totalHits
		}
		for _, hit := range hits[startIndex:endIndex] {
			doc, ok := s.documentStore.Get(hit.Doc)
			if !ok {
				// deleted after the reader was taken
				continue
			}
			paginatedHits = append(paginatedHits, services.HitResult{
				Document: doc.Project(q.RetrivableFields),
				Score:    hit.Score,
				Freq:     hit.Freq,
			})
		}
	}

	return services.SearchResult{
		Hits:     paginatedHits,
		Total:    totalHits,
		Page:     page,
		PageSize: pageSize,
		Query:    rewritten.String(),
		Took:     time.Since(startTime).Milliseconds(),
		QueryId:  uuid.New().String(),
	}, nil
}

// Spans returns the raw position matches of a positional query in stream order.
func (s *Service) Spans(ctx context.Context, q services.SpansQuery) (services.SpansResult, error) {
	startTime := time.Now()
	result, err := s.spans(ctx, q, startTime)
	observe("spans", startTime, len(result.Matches), err)
	if err != nil {
		s.logger.Debug("spans failed", "error", err)
	}
	return result, err
}

func (s *Service) spans(ctx context.Context, q services.SpansQuery, startTime time.Time) (services.SpansResult, error) {
	limit := q.Limit
	switch {
	case limit == 0:
		limit = DefaultSpansLimit
	case limit < 0 || limit > MaxSpansLimit:
		return services.SpansResult{}, errors.NewValidationError("limit", fmt.Sprintf("limit must be between 1 and %d", MaxSpansLimit))
	}

	built, err := q.Query.Build()
	if err != nil {
		return services.SpansResult{}, err
	}
	searcher := s.searcher()
	rewritten, err := searcher.Rewrite(built)
	if err != nil {
		return services.SpansResult{}, err
	}
	stream, err := searcher.Spans(ctx, rewritten)
	if err != nil {
		return services.SpansResult{}, err
	}

	matches := []services.SpanMatch{}
	for len(matches) < limit && stream.Next() {
		if len(matches)%spansCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return services.SpansResult{}, err
			}
		}
		matches = append(matches, s.spanMatch(spans.Current(stream)))
	}
	truncated := len(matches) == limit && stream.Next()
	if err := stream.Err(); err != nil {
		return services.SpansResult{}, err
	}

	return services.SpansResult{
		Field:     stream.Field(),
		Matches:   matches,
		Truncated: truncated,
		Query:     rewritten.String(),
		Took:      time.Since(startTime).Milliseconds(),
		QueryId:   uuid.New().String(),
	}, nil
}

func (s *Service) spanMatch(m spans.Match) services.SpanMatch {
	out := services.SpanMatch{Doc: m.Doc, Start: m.Start, End: m.End}
	if doc, ok := s.documentStore.Get(m.Doc); ok {
		out.DocumentID, _ = doc.GetDocumentID()
	}
	return out
}

// Count returns the number of documents matching q.
func (s *Service) Count(ctx context.Context, q query.Query) (int, error) {
	return s.searcher().Count(ctx, q)
}

func observe(kind string, startTime time.Time, matches int, err error) {
	metrics.QueriesTotal.WithLabelValues(kind, metrics.Status(err)).Inc()
	metrics.QueryDuration.WithLabelValues(kind).Observe(time.Since(startTime).Seconds())
	metrics.MatchesTotal.WithLabelValues(kind).Add(float64(matches))
}
