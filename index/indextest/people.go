// Package indextest provides small in-memory segments for tests.
package indextest

import (
	"fmt"

	"github.com/gcbaptista/go-span-search/index"
	"github.com/gcbaptista/go-span-search/model"
)

// Person is one (gender, first, last) record.
type Person struct {
	Gender, First, Last string
}

// People is a five-document corpus. Each document lists several people and
// stores them as three multi-valued fields, so the i-th person of a document
// sits at position i of "gender", "first" and "last".
var People = [][]Person{
	{{"male", "james", "jones"}},
	{{"male", "james", "smith"}, {"female", "sally", "jones"}},
	{{"female", "greta", "jones"}, {"female", "sally", "smith"}, {"male", "james", "jones"}},
	{{"female", "lisa", "jones"}, {"male", "bob", "costas"}},
	{{"female", "sally", "smith"}, {"female", "linda", "dixit"}, {"male", "bubba", "jones"}},
}

// Fields turns the people of one document into field values.
func Fields(people []Person) []index.FieldValue {
	values := make([]index.FieldValue, 0, 3*len(people))
	for _, p := range people {
		values = append(values,
			index.FieldValue{Field: "gender", Tokens: []string{p.Gender}},
			index.FieldValue{Field: "first", Tokens: []string{p.First}},
			index.FieldValue{Field: "last", Tokens: []string{p.Last}},
		)
	}
	return values
}

// PeopleSegment indexes People into a single segment.
func PeopleSegment() *index.Segment {
	w := index.NewSegmentWriter(0)
	for _, doc := range People {
		w.AddDocument(Fields(doc))
	}
	return w.Flush()
}

// PeopleReader splits People into segments of at most perSegment documents.
func PeopleReader(perSegment int) *index.Reader {
	var leaves []index.LeafReader
	w := index.NewSegmentWriter(0)
	for _, doc := range People {
		w.AddDocument(Fields(doc))
		if int(w.NumDocs()) == perSegment {
			leaves = append(leaves, w.Flush().Snapshot())
		}
	}
	if seg := w.Flush(); seg != nil {
		leaves = append(leaves, seg.Snapshot())
	}
	return index.NewReader(leaves...)
}

// PeopleDocuments returns People as source documents with ids "p0".."p4".
// Each person contributes one element to the "gender", "first" and "last" arrays.
func PeopleDocuments() []model.Document {
	docs := make([]model.Document, len(People))
	for i, people := range People {
		var gender, first, last []interface{}
		for _, p := range people {
			gender = append(gender, p.Gender)
			first = append(first, p.First)
			last = append(last, p.Last)
		}
		docs[i] = model.Document{
			"documentID": fmt.Sprintf("p%d", i),
			"gender":     gender,
			"first":      first,
			"last":       last,
		}
	}
	return docs
}

// FaultyReader is a LeafReader whose postings always fail.
type FaultyReader struct {
	Err error
}

func (r FaultyReader) MaxDoc() uint32 { return 1 }
func (r FaultyReader) NumDocs() uint32 { return 1 }
func (r FaultyReader) HasField(string) bool { return true }
func (r FaultyReader) Postings(string, string) (*index.PostingsEnum, error) {
	return nil, r.Err
}
