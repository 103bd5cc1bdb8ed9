package search

import (
	"github.com/gcbaptista/go-span-search/index"
)

// NoMoreDocs is returned by scorers once they are exhausted.
const NoMoreDocs = index.NoMoreDocs

// Weight is a query prepared for execution against the segments of one reader.
type Weight interface {
	// Scorer returns a per-document scorer for leaf, or nil when nothing in leaf can match.
	Scorer(leaf index.LeafContext) (Scorer, error)
}

// BulkWeight is implemented by weights with their own bulk scoring path.
type BulkWeight interface {
	Weight
	// BulkScorer returns a bulk scorer for leaf, or nil when nothing in leaf can match.
	BulkScorer(leaf index.LeafContext) (BulkScorer, error)
}

// Scorer iterates the matching documents of one segment in increasing order.
// Document ids are local to the segment.
type Scorer interface {
	// DocID is the current document, or NoMoreDocs once exhausted. It is
	// undefined before the first NextDoc or Advance.
	DocID() uint32
	NextDoc() (uint32, error)
	// Advance moves to the first document >= target. target must be beyond DocID.
	Advance(target uint32) (uint32, error)
	Score() float64
	Freq() int
}

// BulkScorer scores a range of documents at once.
type BulkScorer interface {
	// Score collects every matching document in [min, max) and returns the
	// first matching document at or after max, or NoMoreDocs.
	Score(collector LeafCollector, min, max uint32) (uint32, error)
}

// LeafCollector receives the matches of one segment.
type LeafCollector interface {
	// SetScorer is called before documents are collected. Score and Freq of
	// the scorer describe the document passed to Collect.
	SetScorer(scorer Scorer)
	Collect(doc uint32) error
}

// Collector hands out a LeafCollector per segment.
type Collector interface {
	LeafCollector(leaf index.LeafContext) (LeafCollector, error)
}

// bulkScorerFor returns w's own bulk path when it has one, and the
// per-document loop otherwise.
func bulkScorerFor(w Weight, leaf index.LeafContext) (BulkScorer, error) {
	if bw, ok := w.(BulkWeight); ok {
		return bw.BulkScorer(leaf)
	}
	scorer, err := w.Scorer(leaf)
	if err != nil || scorer == nil {
		return nil, err
	}
	return newDefaultBulkScorer(scorer), nil
}

// defaultBulkScorer drives a Scorer document by document.
type defaultBulkScorer struct {
	scorer  Scorer
	started bool
}

func newDefaultBulkScorer(scorer Scorer) *defaultBulkScorer {
	return &defaultBulkScorer{scorer: scorer}
}

func (b *defaultBulkScorer) Score(collector LeafCollector, min, max uint32) (uint32, error) {
	collector.SetScorer(b.scorer)

	var (
		doc uint32
		err error
	)
	switch {
	case !b.started:
		b.started = true
		doc, err = b.scorer.Advance(min)
	case b.scorer.DocID() < min:
		doc, err = b.scorer.Advance(min)
	default:
		doc = b.scorer.DocID()
	}

	for err == nil && doc < max {
		if err = collector.Collect(doc); err != nil {
			return doc, err
		}
		doc, err = b.scorer.NextDoc()
	}
	return doc, err
}
