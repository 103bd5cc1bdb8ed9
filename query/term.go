package query

import (
	"github.com/gcbaptista/go-span-search/index"
	"github.com/gcbaptista/go-span-search/internal/errors"
	"github.com/gcbaptista/go-span-search/spans"
)

// TermQuery matches every occurrence of one token in one field.
type TermQuery struct {
	base
	field string
	value string
}

// NewTerm creates a term query.
func NewTerm(field, value string, opts ...Option) (*TermQuery, error) {
	if field == "" {
		return nil, errors.NewInvalidQueryError("term", "field is required")
	}
	b, err := newBase("term", opts)
	if err != nil {
		return nil, err
	}
	return &TermQuery{base: b, field: field, value: value}, nil
}

func (q *TermQuery) Field() string { return q.field }

// Value is the token being matched.
func (q *TermQuery) Value() string { return q.value }

func (q *TermQuery) Rewrite() (Query, error) {
	return q.rewriteWith(q, func() (Query, error) { return q, nil })
}

func (q *TermQuery) Spans(leaf index.LeafContext) (spans.Spans, error) {
	if leaf.Reader == nil || !leaf.Reader.HasField(q.field) {
		return nil, nil
	}
	postings, err := leaf.Reader.Postings(q.field, q.value)
	if err != nil {
		return nil, errors.NewSegmentFaultError(leaf.Ord, err)
	}
	return spans.NewTermSpans(q.field, postings), nil
}

func (q *TermQuery) String() string {
	return q.field + ":" + q.value + q.boostString()
}

func (q *TermQuery) withBoost(boost float64) Query {
	c := *q
	c.boost = boost
	return &c
}
