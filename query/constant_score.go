package query

import (
	"github.com/gcbaptista/go-span-search/internal/errors"
)

// ConstantScoreQuery matches the documents of its inner query and scores
// each of them with its own boost, reporting a frequency of 1.
type ConstantScoreQuery struct {
	base
	inner Query
}

// NewConstantScore wraps inner.
func NewConstantScore(inner Query, opts ...Option) (*ConstantScoreQuery, error) {
	if inner == nil {
		return nil, errors.NewInvalidQueryError("constant_score", "inner query is required")
	}
	b, err := newBase("constant_score", opts)
	if err != nil {
		return nil, err
	}
	return &ConstantScoreQuery{base: b, inner: inner}, nil
}

// Inner returns the wrapped query.
func (q *ConstantScoreQuery) Inner() Query { return q.inner }

func (q *ConstantScoreQuery) Rewrite() (Query, error) {
	return q.rewriteWith(q, q.defaultRewrite)
}

// defaultRewrite rewrites the inner query. A nested constant score collapses
// into one node that keeps this node's boost; any other change is wrapped
// again with this node's boost.
func (q *ConstantScoreQuery) defaultRewrite() (Query, error) {
	r, err := q.inner.Rewrite()
	if err != nil {
		return nil, err
	}
	if nested, ok := r.(*ConstantScoreQuery); ok {
		return Boosted(nested, q.boost)
	}
	if r == q.inner {
		return q, nil
	}
	wrapped, err := NewConstantScore(r, WithBoost(q.boost))
	if err != nil {
		return nil, err
	}
	return wrapped, nil
}

func (q *ConstantScoreQuery) String() string {
	return "ConstantScore(" + q.inner.String() + ")" + q.boostString()
}

func (q *ConstantScoreQuery) withBoost(boost float64) Query {
	c := *q
	c.boost = boost
	return &c
}
