package search

import (
	"github.com/gcbaptista/go-span-search/index"
)

// constantScoreWeight matches what its inner weight matches and scores every
// document with a fixed value and a frequency of 1.
type constantScoreWeight struct {
	inner Weight
	score float64
}

// NewConstantScoreWeight wraps inner so that every document it matches scores score.
func NewConstantScoreWeight(inner Weight, score float64) Weight {
	return &constantScoreWeight{inner: inner, score: score}
}

func (w *constantScoreWeight) Scorer(leaf index.LeafContext) (Scorer, error) {
	s, err := w.inner.Scorer(leaf)
	if err != nil || s == nil {
		return nil, err
	}
	return &constantScorer{Scorer: s, score: w.score}, nil
}

// BulkScorer keeps the inner bulk path and only replaces the scorer the
// collector observes.
func (w *constantScoreWeight) BulkScorer(leaf index.LeafContext) (BulkScorer, error) {
	inner, err := bulkScorerFor(w.inner, leaf)
	if err != nil || inner == nil {
		return nil, err
	}
	return &constantBulkScorer{inner: inner, score: w.score}, nil
}

type constantScorer struct {
	Scorer
	score float64
}

func (s *constantScorer) Score() float64 { return s.score }
func (s *constantScorer) Freq() int { return 1 }

type constantBulkScorer struct {
	inner BulkScorer
	score float64
}

func (b *constantBulkScorer) Score(collector LeafCollector, min, max uint32) (uint32, error) {
	return b.inner.Score(&constantCollector{LeafCollector: collector, score: b.score}, min, max)
}

type constantCollector struct {
	LeafCollector
	score float64
}

func (c *constantCollector) SetScorer(scorer Scorer) {
	c.LeafCollector.SetScorer(&constantScorer{Scorer: scorer, score: c.score})
}
