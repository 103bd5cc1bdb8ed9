// Package query defines the immutable query tree evaluated by the span engine.
//
// Nodes are built through constructors that validate their arguments, so a
// tree that exists is always well formed. Boost is the only adjustable value
// and changing it yields a copy; the original node is never mutated.
package query

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gcbaptista/go-span-search/index"
	"github.com/gcbaptista/go-span-search/internal/errors"
	"github.com/gcbaptista/go-span-search/spans"
)

// MaxRewriteIterations bounds the rewrite fixpoint loop.
const MaxRewriteIterations = 64

// Query is a node of a query tree.
type Query interface {
	// Boost is the multiplier applied to scores produced by this node.
	Boost() float64
	// Rewrite performs one node-local rewrite step. It returns the receiver
	// itself when the node is already in normal form.
	Rewrite() (Query, error)
	String() string

	withBoost(boost float64) Query
	customRewrite() bool
}

// SpanQuery is a query whose matches carry positions.
type SpanQuery interface {
	Query
	// Field is the field identity reported by the node's matches.
	Field() string
	// Spans compiles the node against one segment. A nil result means the
	// segment cannot produce matches for this node.
	Spans(leaf index.LeafContext) (spans.Spans, error)
}

// RewriteFunc replaces the default rewrite step of a single node instance.
// The function receives the node it is attached to and may delegate to
// DefaultRewrite.
type RewriteFunc func(self Query) (Query, error)

// Option configures a node at construction time.
type Option func(*base)

// WithBoost sets the node boost. It must be finite and non-negative.
func WithBoost(boost float64) Option {
	return func(b *base) {
		b.boost = boost
	}
}

// WithRewriter attaches a rewrite strategy to the node instance.
func WithRewriter(fn RewriteFunc) Option {
	return func(b *base) {
		b.rewriter = fn
	}
}

type base struct {
	boost    float64
	rewriter RewriteFunc
}

func newBase(kind string, opts []Option) (base, error) {
	b := base{boost: 1}
	for _, opt := range opts {
		opt(&b)
	}
	if err := validateBoost(kind, b.boost); err != nil {
		return base{}, err
	}
	return b, nil
}

func validateBoost(kind string, boost float64) error {
	if math.IsNaN(boost) || math.IsInf(boost, 0) || boost < 0 {
		return errors.NewInvalidQueryError(kind, fmt.Sprintf("boost must be finite and >= 0, got %v", boost))
	}
	return nil
}

func (b base) Boost() float64 { return b.boost }

func (b base) customRewrite() bool { return b.rewriter != nil }

func (b base) boostString() string {
	if b.boost == 1 {
		return ""
	}
	return "^" + strconv.FormatFloat(b.boost, 'g', -1, 64)
}

// rewriteWith runs the attached strategy, or def when none is attached.
func (b base) rewriteWith(self Query, def func() (Query, error)) (Query, error) {
	if b.rewriter != nil {
		return b.rewriter(self)
	}
	return def()
}

// Boosted returns q carrying boost. q itself is returned when the boost is unchanged.
func Boosted(q Query, boost float64) (Query, error) {
	if q == nil {
		return nil, errors.NewInvalidQueryError("", "query is required")
	}
	if err := validateBoost("", boost); err != nil {
		return nil, err
	}
	if q.Boost() == boost {
		return q, nil
	}
	return q.withBoost(boost), nil
}

// DefaultRewrite performs the built-in rewrite step of q, ignoring any attached RewriteFunc.
func DefaultRewrite(q Query) (Query, error) {
	switch n := q.(type) {
	case *TermQuery:
		return n, nil
	case *OrQuery:
		return n.defaultRewrite()
	case *NearQuery:
		return n.defaultRewrite()
	case *FieldMaskQuery:
		return n.defaultRewrite()
	case *ConstantScoreQuery:
		return n.defaultRewrite()
	default:
		return nil, errors.NewInvalidQueryError("", fmt.Sprintf("unsupported query type %T", q))
	}
}

// Rewrite applies node rewrites until the tree stops changing. When nothing
// changes the very same q is returned.
func Rewrite(q Query) (Query, error) {
	if q == nil {
		return nil, errors.NewInvalidQueryError("", "query is required")
	}
	cur := q
	for i := 0; i < MaxRewriteIterations; i++ {
		next, err := cur.Rewrite()
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, errors.NewInvariantViolationError("rewrite", fmt.Sprintf("%s rewrote to nil", cur))
		}
		if next == cur || Equal(next, cur) {
			return cur, nil
		}
		cur = next
	}
	return nil, errors.NewInvariantViolationError("rewrite",
		fmt.Sprintf("no fixpoint for %s after %d iterations", q, MaxRewriteIterations))
}

// Must panics if err is non-nil. It is meant for trees built from constants.
func Must[T Query](q T, err error) T {
	if err != nil {
		panic(err)
	}
	return q
}

// rewriteSpanClause runs one rewrite step on a clause of a composite node.
func rewriteSpanClause(kind string, clause SpanQuery) (SpanQuery, error) {
	r, err := clause.Rewrite()
	if err != nil {
		return nil, err
	}
	sq, ok := r.(SpanQuery)
	if !ok {
		return nil, errors.NewInvalidQueryError(kind, fmt.Sprintf("clause %s rewrote to non-positional %T", clause, r))
	}
	return sq, nil
}

// rewriteClauses rewrites every clause one step. changed is false when every
// clause returned itself.
func rewriteClauses(kind string, clauses []SpanQuery) (out []SpanQuery, changed bool, err error) {
	out = make([]SpanQuery, len(clauses))
	for i, c := range clauses {
		r, err := rewriteSpanClause(kind, c)
		if err != nil {
			return nil, false, err
		}
		if r != c {
			changed = true
		}
		out[i] = r
	}
	return out, changed, nil
}

func sameField(kind string, clauses []SpanQuery) (string, error) {
	if len(clauses) == 0 {
		return "", errors.NewInvalidQueryError(kind, "at least one clause is required")
	}
	for i, c := range clauses {
		if c == nil {
			return "", errors.NewInvalidQueryError(kind, fmt.Sprintf("clause %d is nil", i))
		}
	}
	field := clauses[0].Field()
	for _, c := range clauses[1:] {
		if c.Field() != field {
			return "", errors.NewInvalidQueryError(kind,
				fmt.Sprintf("clauses must share one field, got %q and %q", field, c.Field()))
		}
	}
	return field, nil
}
