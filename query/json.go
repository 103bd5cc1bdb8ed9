package query

import (
	"fmt"

	"github.com/gcbaptista/go-span-search/internal/errors"
)

// Node is the JSON form of a query tree. Exactly one of the kind fields must be set.
//
//	{"near": {"clauses": [
//	    {"term": {"field": "first", "value": "sally"}},
//	    {"mask": {"query": {"term": {"field": "last", "value": "smith"}}, "field": "first"}}
//	  ], "slop": -1, "ordered": false}}
type Node struct {
	Term          *TermNode `json:"term,omitempty"`
	Or            *OrNode   `json:"or,omitempty"`
	Near          *NearNode `json:"near,omitempty"`
	Mask          *MaskNode `json:"mask,omitempty"`
	ConstantScore *Node     `json:"constant_score,omitempty"`
	Boost         *float64  `json:"boost,omitempty"`
}

type TermNode struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type OrNode struct {
	Clauses []Node `json:"clauses"`
}

type NearNode struct {
	Clauses []Node `json:"clauses"`
	Slop    int    `json:"slop"`
	Ordered bool   `json:"ordered"`
}

type MaskNode struct {
	Query Node   `json:"query"`
	Field string `json:"field"`
}

// Build converts the node into a validated query tree.
func (n Node) Build() (Query, error) {
	var opts []Option
	if n.Boost != nil {
		opts = append(opts, WithBoost(*n.Boost))
	}

	set := 0
	for _, present := range []bool{n.Term != nil, n.Or != nil, n.Near != nil, n.Mask != nil, n.ConstantScore != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, errors.NewInvalidQueryError("", fmt.Sprintf("node must define exactly one query kind, found %d", set))
	}

	switch {
	case n.Term != nil:
		return asQuery(NewTerm(n.Term.Field, n.Term.Value, opts...))
	case n.Or != nil:
		clauses, err := buildClauses(n.Or.Clauses)
		if err != nil {
			return nil, err
		}
		return asQuery(NewOr(clauses, opts...))
	case n.Near != nil:
		clauses, err := buildClauses(n.Near.Clauses)
		if err != nil {
			return nil, err
		}
		return asQuery(NewNear(clauses, n.Near.Slop, n.Near.Ordered, opts...))
	case n.Mask != nil:
		masked, err := n.Mask.Query.BuildSpan()
		if err != nil {
			return nil, err
		}
		return asQuery(NewFieldMask(masked, n.Mask.Field, opts...))
	default:
		inner, err := n.ConstantScore.Build()
		if err != nil {
			return nil, err
		}
		return asQuery(NewConstantScore(inner, opts...))
	}
}

// BuildSpan builds the node and requires a positional query.
func (n Node) BuildSpan() (SpanQuery, error) {
	q, err := n.Build()
	if err != nil {
		return nil, err
	}
	sq, ok := q.(SpanQuery)
	if !ok {
		return nil, errors.NewInvalidQueryError("", fmt.Sprintf("%s cannot be used where positions are required", q))
	}
	return sq, nil
}

func buildClauses(nodes []Node) ([]SpanQuery, error) {
	clauses := make([]SpanQuery, len(nodes))
	for i, node := range nodes {
		sq, err := node.BuildSpan()
		if err != nil {
			return nil, fmt.Errorf("clause %d: %w", i, err)
		}
		clauses[i] = sq
	}
	return clauses, nil
}

// asQuery drops the typed nil a failed constructor returns.
func asQuery[T Query](q T, err error) (Query, error) {
	if err != nil {
		return nil, err
	}
	return q, nil
}
