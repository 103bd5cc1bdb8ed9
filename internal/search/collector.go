package search

import (
	"sync/atomic"

	"github.com/gcbaptista/go-span-search/index"
)

// Hit is one matching document with its global id.
type Hit struct {
	Doc   uint32
	Score float64
	Freq  int
}

// HitCollector keeps every hit, segment by segment. Segments may be
// collected concurrently.
type HitCollector struct {
	perLeaf [][]Hit
}

// NewHitCollector returns a collector sized for the segments of reader.
func NewHitCollector(reader *index.Reader) *HitCollector {
	return &HitCollector{perLeaf: make([][]Hit, len(reader.Leaves()))}
}

func (c *HitCollector) LeafCollector(leaf index.LeafContext) (LeafCollector, error) {
	return &hitLeafCollector{parent: c, leaf: leaf}, nil
}

// Hits returns the collected hits in increasing document order.
func (c *HitCollector) Hits() []Hit {
	total := 0
	for _, hits := range c.perLeaf {
		total += len(hits)
	}
	out := make([]Hit, 0, total)
	for _, hits := range c.perLeaf {
		out = append(out, hits...)
	}
	return out
}

type hitLeafCollector struct {
	parent *HitCollector
	leaf   index.LeafContext
	scorer Scorer
}

func (c *hitLeafCollector) SetScorer(scorer Scorer) { c.scorer = scorer }

func (c *hitLeafCollector) Collect(doc uint32) error {
	c.parent.perLeaf[c.leaf.Ord] = append(c.parent.perLeaf[c.leaf.Ord], Hit{
		Doc:   c.leaf.DocBase + doc,
		Score: c.scorer.Score(),
		Freq:  c.scorer.Freq(),
	})
	return nil
}

// CountCollector counts matching documents.
type CountCollector struct {
	n atomic.Int64
}

func (c *CountCollector) LeafCollector(index.LeafContext) (LeafCollector, error) {
	return countLeafCollector{&c.n}, nil
}

// Count is the number of documents collected so far.
func (c *CountCollector) Count() int { return int(c.n.Load()) }

type countLeafCollector struct {
	n *atomic.Int64
}

func (countLeafCollector) SetScorer(Scorer) {}

func (c countLeafCollector) Collect(uint32) error {
	c.n.Add(1)
	return nil
}
