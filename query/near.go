package query

import (
	"fmt"
	"strconv"

	"github.com/gcbaptista/go-span-search/index"
	"github.com/gcbaptista/go-span-search/internal/errors"
	"github.com/gcbaptista/go-span-search/spans"
)

// NearQuery matches windows in which one match of every clause lies within slop.
//
// The slop counts uncovered positions between the chosen matches. With
// ordered set each clause's match must end at or before the next one
// starts. A slop of -1 (unordered only) requires all matches to be co-located.
type NearQuery struct {
	base
	field   string
	clauses []SpanQuery
	slop    int
	ordered bool
}

// NewNear creates a proximity query.
func NewNear(clauses []SpanQuery, slop int, ordered bool, opts ...Option) (*NearQuery, error) {
	field, err := sameField("near", clauses)
	if err != nil {
		return nil, err
	}
	if err := validateSlop(slop, ordered); err != nil {
		return nil, err
	}
	b, err := newBase("near", opts)
	if err != nil {
		return nil, err
	}
	return &NearQuery{
		base:    b,
		field:   field,
		clauses: append([]SpanQuery(nil), clauses...),
		slop:    slop,
		ordered: ordered,
	}, nil
}

func validateSlop(slop int, ordered bool) error {
	if slop < -1 {
		return errors.NewInvalidQueryError("near", fmt.Sprintf("slop must be >= -1, got %d", slop))
	}
	if slop == -1 && ordered {
		return errors.NewInvalidQueryError("near", "slop -1 is only allowed for unordered queries")
	}
	return nil
}

func (q *NearQuery) Field() string { return q.field }

// Clauses returns a copy of the clause list.
func (q *NearQuery) Clauses() []SpanQuery {
	return append([]SpanQuery(nil), q.clauses...)
}

func (q *NearQuery) Slop() int { return q.slop }

func (q *NearQuery) Ordered() bool { return q.ordered }

func (q *NearQuery) Rewrite() (Query, error) {
	return q.rewriteWith(q, q.defaultRewrite)
}

func (q *NearQuery) defaultRewrite() (Query, error) {
	clauses, changed, err := rewriteClauses("near", q.clauses)
	if err != nil {
		return nil, err
	}
	if !changed {
		return q, nil
	}
	c := *q
	c.field, err = sameField("near", clauses)
	if err != nil {
		return nil, err
	}
	c.clauses = clauses
	return &c, nil
}

// Spans returns nil when any clause cannot match in the segment.
func (q *NearQuery) Spans(leaf index.LeafContext) (spans.Spans, error) {
	children := make([]spans.Spans, len(q.clauses))
	for i, clause := range q.clauses {
		s, err := clause.Spans(leaf)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, nil
		}
		children[i] = s
	}
	return spans.NewNearSpans(q.field, children, q.slop, q.ordered), nil
}

func (q *NearQuery) String() string {
	return "spanNear([" + joinClauses(q.clauses) + "], " + strconv.Itoa(q.slop) + ", " +
		strconv.FormatBool(q.ordered) + ")" + q.boostString()
}

func (q *NearQuery) withBoost(boost float64) Query {
	c := *q
	c.boost = boost
	return &c
}
