package search

import (
	"github.com/gcbaptista/go-span-search/index"
	"github.com/gcbaptista/go-span-search/query"
	"github.com/gcbaptista/go-span-search/spans"
)

// spanWeight executes a positional query. A document's frequency is the
// number of matches it holds and its score is boost × frequency.
type spanWeight struct {
	query query.SpanQuery
	check bool
}

func (w *spanWeight) spans(leaf index.LeafContext) (spans.Spans, error) {
	s, err := w.query.Spans(leaf)
	if err != nil || s == nil {
		return nil, err
	}
	if w.check {
		s = spans.Check(s, w.query.String())
	}
	return s, nil
}

func (w *spanWeight) Scorer(leaf index.LeafContext) (Scorer, error) {
	s, err := w.spans(leaf)
	if err != nil || s == nil {
		return nil, err
	}
	return &spanScorer{spans: s, boost: w.query.Boost()}, nil
}

func (w *spanWeight) BulkScorer(leaf index.LeafContext) (BulkScorer, error) {
	s, err := w.spans(leaf)
	if err != nil || s == nil {
		return nil, err
	}
	return &spanBulkScorer{scorer: spanScorer{spans: s, boost: w.query.Boost()}}, nil
}

// spanScorer groups the matches of a stream by document.
type spanScorer struct {
	spans   spans.Spans
	boost   float64
	started bool
	// more is true while the stream sits on a match not yet counted.
	more bool
	doc  uint32
	freq int
}

func (s *spanScorer) DocID() uint32 { return s.doc }
func (s *spanScorer) Freq() int { return s.freq }
func (s *spanScorer) Score() float64 { return s.boost * float64(s.freq) }

func (s *spanScorer) NextDoc() (uint32, error) {
	if !s.started {
		s.started = true
		s.more = s.spans.Next()
	}
	return s.countCurrentDoc()
}

func (s *spanScorer) Advance(target uint32) (uint32, error) {
	switch {
	case !s.started:
		s.started = true
		s.more = s.spans.SkipTo(target)
	case s.more && s.spans.Doc() < target:
		s.more = s.spans.SkipTo(target)
	}
	return s.countCurrentDoc()
}

// countCurrentDoc consumes every match of the document the stream sits on.
func (s *spanScorer) countCurrentDoc() (uint32, error) {
	s.freq = 0
	if !s.more {
		s.doc = NoMoreDocs
		return s.doc, s.spans.Err()
	}
	s.doc = s.spans.Doc()
	for s.more && s.spans.Doc() == s.doc {
		s.freq++
		s.more = s.spans.Next()
	}
	if !s.more {
		if err := s.spans.Err(); err != nil {
			s.doc = NoMoreDocs
			return s.doc, err
		}
	}
	return s.doc, nil
}

// spanBulkScorer walks the stream directly, without the Advance bookkeeping
// of the per-document path.
type spanBulkScorer struct {
	scorer spanScorer
}

func (b *spanBulkScorer) Score(collector LeafCollector, min, max uint32) (uint32, error) {
	s := &b.scorer
	collector.SetScorer(s)

	if !s.started || s.doc < min {
		if _, err := s.Advance(min); err != nil {
			return NoMoreDocs, err
		}
	}
	for s.doc < max {
		if err := collector.Collect(s.doc); err != nil {
			return s.doc, err
		}
		if _, err := s.countCurrentDoc(); err != nil {
			return NoMoreDocs, err
		}
	}
	return s.doc, nil
}
