package query

import (
	"strings"

	"github.com/gcbaptista/go-span-search/index"
	"github.com/gcbaptista/go-span-search/spans"
)

// OrQuery matches the union of its clauses' matches.
type OrQuery struct {
	base
	field   string
	clauses []SpanQuery
}

// NewOr creates a disjunction. All clauses must report the same field;
// wrap clauses from other fields in a FieldMaskQuery.
func NewOr(clauses []SpanQuery, opts ...Option) (*OrQuery, error) {
	field, err := sameField("or", clauses)
	if err != nil {
		return nil, err
	}
	b, err := newBase("or", opts)
	if err != nil {
		return nil, err
	}
	return &OrQuery{base: b, field: field, clauses: append([]SpanQuery(nil), clauses...)}, nil
}

func (q *OrQuery) Field() string { return q.field }

// Clauses returns a copy of the clause list.
func (q *OrQuery) Clauses() []SpanQuery {
	return append([]SpanQuery(nil), q.clauses...)
}

func (q *OrQuery) Rewrite() (Query, error) {
	return q.rewriteWith(q, q.defaultRewrite)
}

// defaultRewrite collapses a single-clause disjunction into its clause,
// folding the boosts together, and otherwise rewrites the clauses.
func (q *OrQuery) defaultRewrite() (Query, error) {
	if len(q.clauses) == 1 {
		only := q.clauses[0]
		return Boosted(only, only.Boost()*q.boost)
	}
	clauses, changed, err := rewriteClauses("or", q.clauses)
	if err != nil {
		return nil, err
	}
	if !changed {
		return q, nil
	}
	c := *q
	c.field, err = sameField("or", clauses)
	if err != nil {
		return nil, err
	}
	c.clauses = clauses
	return &c, nil
}

func (q *OrQuery) Spans(leaf index.LeafContext) (spans.Spans, error) {
	children := make([]spans.Spans, 0, len(q.clauses))
	for _, clause := range q.clauses {
		s, err := clause.Spans(leaf)
		if err != nil {
			return nil, err
		}
		if s != nil {
			children = append(children, s)
		}
	}
	if len(children) == 0 {
		return nil, nil
	}
	return spans.NewOrSpans(q.field, children), nil
}

func (q *OrQuery) String() string {
	return "spanOr([" + joinClauses(q.clauses) + "])" + q.boostString()
}

func (q *OrQuery) withBoost(boost float64) Query {
	c := *q
	c.boost = boost
	return &c
}

func joinClauses(clauses []SpanQuery) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
