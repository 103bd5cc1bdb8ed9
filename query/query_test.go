package query

import (
	"encoding/json"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-span-search/index"
	"github.com/gcbaptista/go-span-search/index/indextest"
	"github.com/gcbaptista/go-span-search/internal/errors"
	"github.com/gcbaptista/go-span-search/spans"
)

func term(field, value string, opts ...Option) *TermQuery {
	return Must(NewTerm(field, value, opts...))
}

func mask(q SpanQuery, field string, opts ...Option) *FieldMaskQuery {
	return Must(NewFieldMask(q, field, opts...))
}

func or(clauses ...SpanQuery) *OrQuery {
	return Must(NewOr(clauses))
}

func near(slop int, ordered bool, clauses ...SpanQuery) *NearQuery {
	return Must(NewNear(clauses, slop, ordered))
}

func TestConstructorValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func() error
	}{
		{"term without field", func() error { _, err := NewTerm("", "x"); return err }},
		{"negative boost", func() error { _, err := NewTerm("f", "x", WithBoost(-1)); return err }},
		{"NaN boost", func() error { _, err := NewTerm("f", "x", WithBoost(math.NaN())); return err }},
		{"infinite boost", func() error { _, err := NewTerm("f", "x", WithBoost(math.Inf(1))); return err }},
		{"or without clauses", func() error { _, err := NewOr(nil); return err }},
		{"or with nil clause", func() error { _, err := NewOr([]SpanQuery{term("f", "x"), nil}); return err }},
		{"or mixing fields", func() error { _, err := NewOr([]SpanQuery{term("first", "x"), term("last", "y")}); return err }},
		{"near mixing fields", func() error {
			_, err := NewNear([]SpanQuery{term("first", "x"), term("last", "y")}, 0, false)
			return err
		}},
		{"near slop below -1", func() error { _, err := NewNear([]SpanQuery{term("f", "x")}, -2, false); return err }},
		{"near ordered slop -1", func() error { _, err := NewNear([]SpanQuery{term("f", "x")}, -1, true); return err }},
		{"mask without query", func() error { _, err := NewFieldMask(nil, "f"); return err }},
		{"mask without field", func() error { _, err := NewFieldMask(term("f", "x"), ""); return err }},
		{"constant score without query", func() error { _, err := NewConstantScore(nil); return err }},
		{"boosted nil", func() error { _, err := Boosted(nil, 1); return err }},
		{"boosted negative", func() error { _, err := Boosted(term("f", "x"), -3); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.build(), errors.ErrInvalidQuery)
		})
	}
}

func TestMaskLicensesCrossFieldClauses(t *testing.T) {
	q, err := NewNear([]SpanQuery{term("first", "sally"), mask(term("last", "smith"), "first")}, -1, false)
	require.NoError(t, err)
	assert.Equal(t, "first", q.Field())
	assert.Equal(t, -1, q.Slop())
	assert.False(t, q.Ordered())
	assert.Len(t, q.Clauses(), 2)
}

func TestEquality(t *testing.T) {
	q1 := mask(term("last", "sally"), "first")
	q2 := mask(term("last", "sally"), "first")
	q3 := mask(term("last", "sally"), "XXXXX")
	q4 := mask(term("last", "XXXXX"), "first")
	q5 := mask(term("xXXX", "sally"), "first")

	assert.True(t, Equal(q1, q2))
	assert.Equal(t, Hash(q1), Hash(q2))
	assert.False(t, Equal(q1, q3))
	assert.False(t, Equal(q1, q4))
	assert.False(t, Equal(q1, q5))

	qA := mask(term("last", "sally"), "first", WithBoost(9))
	qB := mask(term("last", "sally"), "first")
	assert.False(t, Equal(qA, qB))
	assert.NotEqual(t, Hash(qA), Hash(qB))

	qB9, err := Boosted(qB, 9)
	require.NoError(t, err)
	assert.True(t, Equal(qA, qB9))
	assert.Equal(t, Hash(qA), Hash(qB9))
	assert.Equal(t, 1.0, qB.Boost(), "boosting copies, the original keeps its boost")

	assert.False(t, Equal(near(0, true, term("f", "a"), term("f", "b")), near(1, true, term("f", "a"), term("f", "b"))))
	assert.False(t, Equal(near(0, true, term("f", "a"), term("f", "b")), near(0, false, term("f", "a"), term("f", "b"))))
	assert.False(t, Equal(near(0, true, term("f", "a"), term("f", "b")), or(term("f", "a"), term("f", "b"))))
	assert.False(t, Equal(term("f", "a"), nil))
	assert.True(t, Equal(nil, nil))
}

func TestRewriteMaskedTermIsIdentity(t *testing.T) {
	q := mask(term("last", "sally"), "first", WithBoost(8.7654321))

	qr, err := Rewrite(q)
	require.NoError(t, err)
	assert.Same(t, q, qr)
	assert.True(t, Equal(q, qr))
	assert.Len(t, Terms(qr), 1)
}

func TestRewriteCustomStrategy(t *testing.T) {
	anon := term("last", "sally", WithRewriter(func(Query) (Query, error) {
		return NewOr([]SpanQuery{term("first", "sally"), term("first", "james")})
	}))
	q := mask(anon, "first")
	assert.True(t, HasCustomRewrite(q))

	qr, err := Rewrite(q)
	require.NoError(t, err)
	assert.False(t, Equal(q, qr))
	assert.Equal(t, []Term{{Field: "first", Value: "sally"}, {Field: "first", Value: "james"}}, Terms(qr))
	assert.False(t, HasCustomRewrite(qr))

	again, err := Rewrite(qr)
	require.NoError(t, err)
	assert.Same(t, qr, again)
}

func TestRewriteNearWithMaskIsIdentity(t *testing.T) {
	q1 := term("last", "smith")
	q2 := term("last", "jones")
	q := near(1, true, q1, mask(q2, "last"))

	qr, err := Rewrite(q)
	require.NoError(t, err)
	assert.Same(t, q, qr)
	assert.Len(t, Terms(qr), 2)
}

func TestRewriteCollapsesSingleClauseOr(t *testing.T) {
	inner := term("f", "a", WithBoost(2))
	q := Must(NewOr([]SpanQuery{inner}, WithBoost(3)))

	qr, err := Rewrite(q)
	require.NoError(t, err)
	assert.True(t, Equal(term("f", "a", WithBoost(6)), qr))
	assert.Equal(t, 2.0, inner.Boost())
}

func TestRewriteKeepsEnclosingBoost(t *testing.T) {
	q := Must(NewNear([]SpanQuery{or(term("f", "a")), term("f", "b")}, 2, false, WithBoost(4)))

	qr, err := Rewrite(q)
	require.NoError(t, err)
	expected := Must(NewNear([]SpanQuery{term("f", "a"), term("f", "b")}, 2, false, WithBoost(4)))
	assert.True(t, Equal(expected, qr), "got %s", qr)
	assert.Len(t, q.Clauses(), 2)
	assert.IsType(t, &OrQuery{}, q.Clauses()[0], "the original tree is untouched")
}

func TestRewriteConstantScore(t *testing.T) {
	t.Run("unchanged inner", func(t *testing.T) {
		q := Must(NewConstantScore(term("f", "a")))
		qr, err := Rewrite(q)
		require.NoError(t, err)
		assert.Same(t, q, qr)
	})

	t.Run("nested constant score takes the outer boost", func(t *testing.T) {
		nested := Must(NewConstantScore(term("f", "a"), WithBoost(2)))
		q := Must(NewConstantScore(nested, WithBoost(5)))
		qr, err := Rewrite(q)
		require.NoError(t, err)
		assert.True(t, Equal(Must(NewConstantScore(term("f", "a"), WithBoost(5))), qr), "got %s", qr)
		assert.Equal(t, 2.0, nested.Boost())
	})

	t.Run("changed inner is wrapped with the outer boost", func(t *testing.T) {
		q := Must(NewConstantScore(or(term("f", "a")), WithBoost(3)))
		qr, err := Rewrite(q)
		require.NoError(t, err)
		assert.True(t, Equal(Must(NewConstantScore(term("f", "a"), WithBoost(3))), qr), "got %s", qr)
	})
}

func TestRewriteIsIdempotent(t *testing.T) {
	custom := term("last", "sally", WithRewriter(func(Query) (Query, error) {
		return NewOr([]SpanQuery{term("last", "sally"), term("last", "jones")})
	}))
	queries := []Query{
		term("f", "a"),
		or(term("f", "a")),
		or(term("f", "a"), or(term("f", "b")), mask(term("g", "c"), "f")),
		near(0, true, or(or(term("f", "a"))), term("f", "b")),
		mask(or(custom), "first", WithBoost(2)),
		Must(NewConstantScore(Must(NewConstantScore(or(term("f", "a")), WithBoost(7))), WithBoost(0.5))),
	}

	for _, q := range queries {
		t.Run(q.String(), func(t *testing.T) {
			once, err := Rewrite(q)
			require.NoError(t, err)
			twice, err := Rewrite(once)
			require.NoError(t, err)
			assert.True(t, Equal(once, twice), "%s != %s", once, twice)
			assert.Same(t, once, twice)
		})
	}
}

func TestRewriteErrors(t *testing.T) {
	var loop RewriteFunc
	loop = func(self Query) (Query, error) {
		return NewTerm("f", self.(*TermQuery).Value()+"x", WithRewriter(loop))
	}
	_, err := Rewrite(term("f", "a", WithRewriter(loop)))
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)

	toConstant := term("f", "a", WithRewriter(func(self Query) (Query, error) {
		return NewConstantScore(term("f", "a"))
	}))
	_, err = Rewrite(or(toConstant, term("f", "b")))
	assert.ErrorIs(t, err, errors.ErrInvalidQuery)

	toOtherField := term("f", "a", WithRewriter(func(Query) (Query, error) {
		return NewTerm("g", "a")
	}))
	_, err = Rewrite(near(0, false, toOtherField, term("f", "b")))
	assert.ErrorIs(t, err, errors.ErrInvalidQuery)

	failing := term("f", "a", WithRewriter(func(Query) (Query, error) { return nil, io.ErrUnexpectedEOF }))
	_, err = Rewrite(mask(failing, "g"))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = Rewrite(nil)
	assert.ErrorIs(t, err, errors.ErrInvalidQuery)
}

func TestDefaultRewriteIgnoresStrategy(t *testing.T) {
	q := term("f", "a", WithRewriter(func(Query) (Query, error) { return NewTerm("f", "b") }))

	r, err := DefaultRewrite(q)
	require.NoError(t, err)
	assert.Same(t, q, r)
}

func TestString(t *testing.T) {
	q := near(1, true, term("last", "smith"), mask(term("first", "james", WithBoost(2)), "last"))
	assert.Equal(t, "spanNear([last:smith, mask(first:james^2) as last], 1, true)", q.String())

	cs := Must(NewConstantScore(or(term("f", "a"), term("f", "b")), WithBoost(0.5)))
	assert.Equal(t, "ConstantScore(spanOr([f:a, f:b]))^0.5", cs.String())
}

func TestNodeBuild(t *testing.T) {
	raw := `{"near": {"clauses": [
		{"term": {"field": "first", "value": "sally"}},
		{"mask": {"query": {"term": {"field": "last", "value": "smith"}}, "field": "first"}}
	], "slop": -1, "ordered": false}, "boost": 2}`

	var node Node
	require.NoError(t, json.Unmarshal([]byte(raw), &node))

	q, err := node.Build()
	require.NoError(t, err)
	expected := Must(NewNear([]SpanQuery{term("first", "sally"), mask(term("last", "smith"), "first")}, -1, false, WithBoost(2)))
	assert.True(t, Equal(expected, q), "got %s", q)

	invalid := []struct {
		name string
		raw  string
		want error
	}{
		{"empty node", `{}`, errors.ErrInvalidQuery},
		{"two kinds", `{"term": {"field": "f", "value": "a"}, "or": {"clauses": []}}`, errors.ErrInvalidQuery},
		{"empty or", `{"or": {"clauses": []}}`, errors.ErrInvalidQuery},
		{"constant score inside or", `{"or": {"clauses": [{"constant_score": {"term": {"field": "f", "value": "a"}}}]}}`, errors.ErrInvalidQuery},
		{"bad slop", `{"near": {"clauses": [{"term": {"field": "f", "value": "a"}}], "slop": -1, "ordered": true}}`, errors.ErrInvalidQuery},
		{"negative boost", `{"term": {"field": "f", "value": "a"}, "boost": -1}`, errors.ErrInvalidQuery},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			var n Node
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &n))
			_, err := n.Build()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func matchingDocs(t *testing.T, q SpanQuery, leaf index.LeafContext) []uint32 {
	t.Helper()
	s, err := q.Spans(leaf)
	require.NoError(t, err)
	matches, err := spans.Collect(s)
	require.NoError(t, err)
	var docs []uint32
	for _, m := range matches {
		if len(docs) == 0 || docs[len(docs)-1] != m.Doc {
			docs = append(docs, m.Doc)
		}
	}
	return docs
}

func TestSpansOverPeople(t *testing.T) {
	leaf := index.LeafContext{Reader: indextest.PeopleSegment().Snapshot()}

	smith := term("last", "smith")
	jones := term("last", "jones")
	james := term("first", "james")
	female := term("gender", "female")

	tests := []struct {
		name string
		q    SpanQuery
		docs []uint32
	}{
		{"masked absent term", mask(term("last", "sally"), "first"), nil},
		{"adjacent in order", near(0, true, smith, mask(jones, "last")), []uint32{1, 2}},
		{"both masked", near(0, true, mask(smith, "last"), mask(jones, "last")), []uint32{1, 2}},
		{"co-located james jones", near(-1, false, james, mask(jones, "first")), []uint32{0, 2}},
		{"co-located mask first", near(-1, false, mask(jones, "first"), james), []uint32{0, 2}},
		{"co-located reversed mask", near(-1, false, jones, mask(james, "last")), []uint32{0, 2}},
		{"co-located female smith", near(-1, false, female, mask(smith, "gender")), []uint32{2, 4}},
		{"co-located both masked to id", near(-1, false, mask(female, "id"), mask(smith, "id")), []uint32{2, 4}},
		{"or of first names", or(term("first", "sally"), james), []uint32{0, 1, 2, 4}},
		{"masked or of first names", mask(or(term("first", "sally"), james), "id"), []uint32{0, 1, 2, 4}},
		{"field absent from segment", term("id", "1"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.docs, matchingDocs(t, tt.q, leaf))
		})
	}
}

func TestSpansNestedMaskedNear(t *testing.T) {
	leaf := index.LeafContext{Reader: indextest.PeopleSegment().Snapshot()}

	qA := or(term("gender", "female"), mask(term("first", "james"), "gender"))
	qB := term("last", "jones")
	q := near(-1, false, mask(qA, "id"), mask(qB, "id"))

	s, err := q.Spans(leaf)
	require.NoError(t, err)
	matches, err := spans.Collect(s)
	require.NoError(t, err)
	assert.Equal(t, []spans.Match{
		{Doc: 0, Start: 0, End: 1},
		{Doc: 1, Start: 1, End: 2},
		{Doc: 2, Start: 0, End: 1},
		{Doc: 2, Start: 2, End: 3},
		{Doc: 3, Start: 0, End: 1},
	}, matches)
}

func TestSpansAbsence(t *testing.T) {
	leaf := index.LeafContext{Reader: indextest.PeopleSegment().Snapshot()}

	s, err := term("id", "1").Spans(leaf)
	require.NoError(t, err)
	assert.Nil(t, s, "a field the segment never indexed compiles to nil")

	s, err = near(5, false, term("first", "sally"), mask(term("id", "1"), "first")).Spans(leaf)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = or(term("first", "sally"), mask(term("id", "1"), "first")).Spans(leaf)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "first", s.Field())

	s, err = term("first", "sally").Spans(index.LeafContext{})
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSpansSegmentFault(t *testing.T) {
	leaf := index.LeafContext{Ord: 7, Reader: indextest.FaultyReader{Err: io.ErrUnexpectedEOF}}

	_, err := near(0, false, term("f", "a"), term("f", "b")).Spans(leaf)
	require.ErrorIs(t, err, errors.ErrSegmentFault)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	var segErr *errors.SegmentFaultError
	require.ErrorAs(t, err, &segErr)
	assert.Equal(t, 7, segErr.Segment)
}
