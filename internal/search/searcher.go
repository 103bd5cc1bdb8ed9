package search

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-span-search/index"
	"github.com/gcbaptista/go-span-search/internal/errors"
	"github.com/gcbaptista/go-span-search/internal/metrics"
	"github.com/gcbaptista/go-span-search/query"
	"github.com/gcbaptista/go-span-search/spans"
)

// windowSize is the number of documents scored between cancellation checks.
const windowSize = 4096

// Searcher evaluates queries against one reader snapshot.
type Searcher struct {
	reader      *index.Reader
	cache       *RewriteCache
	parallelism int
	check       bool
	logger      *slog.Logger
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithRewriteCache shares cache between searchers. Without it every call
// rewrites from scratch.
func WithRewriteCache(cache *RewriteCache) SearcherOption {
	return func(s *Searcher) { s.cache = cache }
}

// WithParallelism bounds the number of segments scored at once.
func WithParallelism(n int) SearcherOption {
	return func(s *Searcher) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithInvariantChecks makes every segment stream verify its own ordering.
func WithInvariantChecks(enabled bool) SearcherOption {
	return func(s *Searcher) { s.check = enabled }
}

func WithLogger(logger *slog.Logger) SearcherOption {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSearcher returns a searcher over reader.
func NewSearcher(reader *index.Reader, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		reader:      reader,
		parallelism: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reader returns the snapshot the searcher runs against.
func (s *Searcher) Reader() *index.Reader { return s.reader }

// Rewrite normalizes q. Trees carrying a custom rewrite strategy are never cached.
func (s *Searcher) Rewrite(q query.Query) (query.Query, error) {
	if q == nil {
		return nil, errors.NewInvalidQueryError("", "query is required")
	}
	if s.cache == nil {
		return query.Rewrite(q)
	}
	if query.HasCustomRewrite(q) {
		metrics.RewriteCacheTotal.WithLabelValues("bypass").Inc()
		return query.Rewrite(q)
	}
	if rewritten, ok := s.cache.get(q); ok {
		metrics.RewriteCacheTotal.WithLabelValues("hit").Inc()
		if query.Equal(rewritten, q) {
			return q, nil
		}
		return rewritten, nil
	}
	metrics.RewriteCacheTotal.WithLabelValues("miss").Inc()

	rewritten, err := query.Rewrite(q)
	if err != nil {
		return nil, err
	}
	s.cache.add(q, rewritten)
	if rewritten != q {
		s.logger.Debug("query rewritten", "query", q.String(), "rewritten", rewritten.String())
	}
	return rewritten, nil
}

// CreateWeight prepares an already rewritten tree for execution.
func (s *Searcher) CreateWeight(q query.Query) (Weight, error) {
	switch n := q.(type) {
	case *query.ConstantScoreQuery:
		inner, err := s.CreateWeight(n.Inner())
		if err != nil {
			return nil, err
		}
		return NewConstantScoreWeight(inner, n.Boost()), nil
	case query.SpanQuery:
		return &spanWeight{query: n, check: s.check}, nil
	default:
		return nil, errors.NewInvalidQueryError("", fmt.Sprintf("unsupported query type %T", q))
	}
}

// Spans rewrites q and returns its matches over the whole reader, with
// global document ids. Every segment is compiled before the stream is
// returned, so collaborator faults at construction surface here.
func (s *Searcher) Spans(ctx context.Context, q query.Query) (spans.Spans, error) {
	rewritten, err := s.Rewrite(q)
	if err != nil {
		return nil, err
	}
	sq, ok := rewritten.(query.SpanQuery)
	if !ok {
		return nil, errors.NewInvalidQueryError("", fmt.Sprintf("%s does not produce positions", rewritten))
	}

	leaves := s.reader.Leaves()
	segments := make([]spans.SegmentSpans, 0, len(leaves))
	for _, leaf := range leaves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sp, err := sq.Spans(leaf)
		if err != nil {
			return nil, err
		}
		if sp == nil {
			continue
		}
		if s.check {
			sp = spans.Check(sp, sq.String())
		}
		segments = append(segments, spans.SegmentSpans{DocBase: leaf.DocBase, Spans: sp})
	}
	return spans.NewMultiSpans(sq.Field(), segments), nil
}

// Search rewrites q and feeds every matching document to collector.
// Segments are scored in parallel; ctx is checked between bulk windows.
func (s *Searcher) Search(ctx context.Context, q query.Query, collector Collector) error {
	rewritten, err := s.Rewrite(q)
	if err != nil {
		return err
	}
	weight, err := s.CreateWeight(rewritten)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for _, leaf := range s.reader.Leaves() {
		if leaf.Reader == nil {
			continue
		}
		g.Go(func() error {
			return s.searchLeaf(gctx, weight, leaf, collector)
		})
	}
	return g.Wait()
}

func (s *Searcher) searchLeaf(ctx context.Context, weight Weight, leaf index.LeafContext, collector Collector) error {
	bulk, err := bulkScorerFor(weight, leaf)
	if err != nil || bulk == nil {
		return err
	}
	lc, err := collector.LeafCollector(leaf)
	if err != nil {
		return err
	}

	maxDoc := leaf.Reader.MaxDoc()
	for min := uint32(0); min < maxDoc; {
		if err := ctx.Err(); err != nil {
			return err
		}
		max := maxDoc
		if maxDoc-min > windowSize {
			max = min + windowSize
		}
		next, err := bulk.Score(lc, min, max)
		if err != nil {
			return err
		}
		min = next
	}
	return nil
}

// Hits returns every matching document in increasing document order.
func (s *Searcher) Hits(ctx context.Context, q query.Query) ([]Hit, error) {
	c := NewHitCollector(s.reader)
	if err := s.Search(ctx, q, c); err != nil {
		return nil, err
	}
	return c.Hits(), nil
}

// Count returns the number of matching documents.
func (s *Searcher) Count(ctx context.Context, q query.Query) (int, error) {
	var c CountCollector
	if err := s.Search(ctx, q, &c); err != nil {
		return 0, err
	}
	return c.Count(), nil
}
