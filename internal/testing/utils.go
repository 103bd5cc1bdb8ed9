// Package testing provides helpers for exercising a span index end to end.
package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-span-search/config"
	"github.com/gcbaptista/go-span-search/index/indextest"
	"github.com/gcbaptista/go-span-search/internal/engine"
	"github.com/gcbaptista/go-span-search/query"
	"github.com/gcbaptista/go-span-search/services"
)

// CreateTestEngine creates an empty in-memory engine.
func CreateTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	return engine.NewEngine(nil)
}

// CreatePeopleIndex creates an index over the gender, first and last fields and
// loads the five people documents into segments of at most segmentDocs documents.
func CreatePeopleIndex(t *testing.T, eng *engine.Engine, indexName string, segmentDocs int) services.IndexAccessor {
	t.Helper()
	settings := config.IndexSettings{
		Name:             indexName,
		SearchableFields: []string{"gender", "first", "last"},
		MaxSegmentDocs:   segmentDocs,
	}
	require.NoError(t, eng.CreateIndex(settings), "Failed to create test index")

	indexAccessor, err := eng.GetIndex(indexName)
	require.NoError(t, err, "Failed to get index accessor")
	require.NoError(t, indexAccessor.AddDocuments(indextest.PeopleDocuments()), "Failed to add test documents")
	return indexAccessor
}

// Match is a (doc, start, end) triple.
type Match struct {
	Doc, Start, End uint32
}

// SpansTestCase is one _spans expectation.
type SpansTestCase struct {
	Name     string
	Query    query.Node
	Expected []Match
	WantErr  error // checked with errors.Is when set
}

// RunSpansTests runs each case against indexAccessor and compares the full match sequence.
func RunSpansTests(t *testing.T, indexAccessor services.IndexAccessor, tests []SpansTestCase) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			result, err := indexAccessor.Spans(context.Background(), services.SpansQuery{Query: tt.Query, Limit: 1000})
			if tt.WantErr != nil {
				assert.ErrorIs(t, err, tt.WantErr)
				return
			}
			require.NoError(t, err, "Spans should not fail")

			got := make([]Match, 0, len(result.Matches))
			for _, m := range result.Matches {
				got = append(got, Match{Doc: m.Doc, Start: m.Start, End: m.End})
			}
			expected := tt.Expected
			if expected == nil {
				expected = []Match{}
			}
			assert.Equal(t, expected, got)
		})
	}
}

// SearchTestCase represents a test case for search operations
type SearchTestCase struct {
	Name          string
	Query         services.SearchQuery
	ExpectedCount int
	ExpectedFirst string // Expected first result document ID
	ValidateFunc  func(t *testing.T, results *services.SearchResult)
}

// RunSearchTests runs a suite of search tests against an index
func RunSearchTests(t *testing.T, indexAccessor services.IndexAccessor, tests []SearchTestCase) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			results, err := indexAccessor.Search(context.Background(), tt.Query)
			require.NoError(t, err, "Search should not fail")

			assert.Equal(t, tt.ExpectedCount, results.Total, "Result count should match")

			if tt.ExpectedFirst != "" && len(results.Hits) > 0 {
				firstDocID, exists := results.Hits[0].Document.GetDocumentID()
				require.True(t, exists, "First result should have document ID")
				assert.Equal(t, tt.ExpectedFirst, firstDocID, "First result should match expected")
			}

			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, &results)
			}
		})
	}
}

// Term builds a term node.
func Term(field, value string) query.Node {
	return query.Node{Term: &query.TermNode{Field: field, Value: value}}
}

// Mask builds a mask node exposing q under field.
func Mask(q query.Node, field string) query.Node {
	return query.Node{Mask: &query.MaskNode{Query: q, Field: field}}
}

// Or builds a disjunction node.
func Or(clauses ...query.Node) query.Node {
	return query.Node{Or: &query.OrNode{Clauses: clauses}}
}

// Near builds a proximity node.
func Near(slop int, ordered bool, clauses ...query.Node) query.Node {
	return query.Node{Near: &query.NearNode{Clauses: clauses, Slop: slop, Ordered: ordered}}
}
