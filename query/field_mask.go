package query

import (
	"github.com/gcbaptista/go-span-search/index"
	"github.com/gcbaptista/go-span-search/internal/errors"
	"github.com/gcbaptista/go-span-search/spans"
)

// FieldMaskQuery reports the matches of a wrapped query as belonging to
// another field, so that they can be combined with that field's clauses.
// Positions are not changed.
type FieldMaskQuery struct {
	base
	masked SpanQuery
	field  string
}

// NewFieldMask wraps masked so that its matches are reported under field.
func NewFieldMask(masked SpanQuery, field string, opts ...Option) (*FieldMaskQuery, error) {
	if masked == nil {
		return nil, errors.NewInvalidQueryError("mask", "masked query is required")
	}
	if field == "" {
		return nil, errors.NewInvalidQueryError("mask", "target field is required")
	}
	b, err := newBase("mask", opts)
	if err != nil {
		return nil, err
	}
	return &FieldMaskQuery{base: b, masked: masked, field: field}, nil
}

// Field returns the target field, not the masked query's field.
func (q *FieldMaskQuery) Field() string { return q.field }

// Masked returns the wrapped query.
func (q *FieldMaskQuery) Masked() SpanQuery { return q.masked }

func (q *FieldMaskQuery) Rewrite() (Query, error) {
	return q.rewriteWith(q, q.defaultRewrite)
}

// defaultRewrite never unwraps the mask: the target field is part of the
// node's identity even when it equals the masked field.
func (q *FieldMaskQuery) defaultRewrite() (Query, error) {
	r, err := rewriteSpanClause("mask", q.masked)
	if err != nil {
		return nil, err
	}
	if r == q.masked {
		return q, nil
	}
	c := *q
	c.masked = r
	return &c, nil
}

func (q *FieldMaskQuery) Spans(leaf index.LeafContext) (spans.Spans, error) {
	s, err := q.masked.Spans(leaf)
	if err != nil {
		return nil, err
	}
	return spans.NewFieldMaskSpans(s, q.field), nil
}

func (q *FieldMaskQuery) String() string {
	return "mask(" + q.masked.String() + ")" + q.boostString() + " as " + q.field
}

func (q *FieldMaskQuery) withBoost(boost float64) Query {
	c := *q
	c.boost = boost
	return &c
}
