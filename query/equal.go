package query

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Equal reports whether a and b are structurally equal: same node types,
// equal boosts and node-specific values, and pairwise equal children.
// A mask's target field takes part in the comparison. Attached rewrite
// strategies do not.
func Equal(a, b Query) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Boost() != b.Boost() {
		return false
	}
	switch x := a.(type) {
	case *TermQuery:
		y, ok := b.(*TermQuery)
		return ok && x.field == y.field && x.value == y.value
	case *OrQuery:
		y, ok := b.(*OrQuery)
		return ok && equalClauses(x.clauses, y.clauses)
	case *NearQuery:
		y, ok := b.(*NearQuery)
		return ok && x.slop == y.slop && x.ordered == y.ordered && equalClauses(x.clauses, y.clauses)
	case *FieldMaskQuery:
		y, ok := b.(*FieldMaskQuery)
		return ok && x.field == y.field && Equal(x.masked, y.masked)
	case *ConstantScoreQuery:
		y, ok := b.(*ConstantScoreQuery)
		return ok && Equal(x.inner, y.inner)
	default:
		return false
	}
}

func equalClauses(a, b []SpanQuery) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

const (
	tagTerm byte = iota + 1
	tagOr
	tagNear
	tagMask
	tagConstantScore
)

// Hash returns a structural hash consistent with Equal.
func Hash(q Query) uint64 {
	d := xxhash.New()
	writeNode(d, q)
	return d.Sum64()
}

func writeNode(d *xxhash.Digest, q Query) {
	var buf [8]byte
	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	writeString := func(s string) {
		writeUint(uint64(len(s)))
		_, _ = d.WriteString(s)
	}
	writeTag := func(tag byte) {
		_, _ = d.Write([]byte{tag})
		boost := q.Boost()
		if boost == 0 {
			boost = 0 // fold -0 into +0, they compare equal
		}
		writeUint(math.Float64bits(boost))
	}

	switch n := q.(type) {
	case *TermQuery:
		writeTag(tagTerm)
		writeString(n.field)
		writeString(n.value)
	case *OrQuery:
		writeTag(tagOr)
		writeUint(uint64(len(n.clauses)))
		for _, c := range n.clauses {
			writeNode(d, c)
		}
	case *NearQuery:
		writeTag(tagNear)
		writeUint(uint64(int64(n.slop)))
		if n.ordered {
			writeUint(1)
		} else {
			writeUint(0)
		}
		writeUint(uint64(len(n.clauses)))
		for _, c := range n.clauses {
			writeNode(d, c)
		}
	case *FieldMaskQuery:
		writeTag(tagMask)
		writeString(n.field)
		writeNode(d, n.masked)
	case *ConstantScoreQuery:
		writeTag(tagConstantScore)
		writeNode(d, n.inner)
	}
}

// Term is a (field, value) pair referenced by a query.
type Term struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Terms returns the distinct terms of q's leaves in first-seen order.
// Masks do not change the field of the terms they wrap.
func Terms(q Query) []Term {
	seen := make(map[Term]bool)
	var out []Term
	walk(q, func(n Query) {
		if t, ok := n.(*TermQuery); ok {
			term := Term{Field: t.field, Value: t.value}
			if !seen[term] {
				seen[term] = true
				out = append(out, term)
			}
		}
	})
	return out
}

// HasCustomRewrite reports whether any node of q carries a RewriteFunc.
func HasCustomRewrite(q Query) bool {
	found := false
	walk(q, func(n Query) {
		if n.customRewrite() {
			found = true
		}
	})
	return found
}

func walk(q Query, visit func(Query)) {
	if q == nil {
		return
	}
	visit(q)
	switch n := q.(type) {
	case *OrQuery:
		for _, c := range n.clauses {
			walk(c, visit)
		}
	case *NearQuery:
		for _, c := range n.clauses {
			walk(c, visit)
		}
	case *FieldMaskQuery:
		walk(n.masked, visit)
	case *ConstantScoreQuery:
		walk(n.inner, visit)
	}
}
