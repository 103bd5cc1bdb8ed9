package index

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// NoMoreDocs is returned by PostingsEnum once the list is exhausted.
const NoMoreDocs uint32 = math.MaxUint32

// PostingEntry records every position at which a term occurs in one document's field.
type PostingEntry struct {
	DocID     uint32   // Segment-local document id
	Positions []uint32 // Ascending token positions
}

// PostingList is a slice of PostingEntry sorted by DocID ascending.
type PostingList []PostingEntry

// PostingsEnum iterates a PostingList in document order, skipping deleted documents.
// DocID, Positions and Freq are only meaningful after NextDoc or Advance returned
// a value other than NoMoreDocs.
type PostingsEnum struct {
	list    PostingList
	idx     int
	deleted *roaring.Bitmap
}

// NewPostingsEnum creates an enum over list. deleted may be nil.
func NewPostingsEnum(list PostingList, deleted *roaring.Bitmap) *PostingsEnum {
	return &PostingsEnum{list: list, idx: -1, deleted: deleted}
}

// NextDoc moves to the next live document.
func (e *PostingsEnum) NextDoc() uint32 {
	e.idx++
	return e.skipDeleted()
}

// Advance moves to the first live document >= target that lies after the current one.
func (e *PostingsEnum) Advance(target uint32) uint32 {
	from := e.idx + 1
	if from >= len(e.list) {
		e.idx = len(e.list)
		return NoMoreDocs
	}
	rest := e.list[from:]
	e.idx = from + sort.Search(len(rest), func(i int) bool {
		return rest[i].DocID >= target
	})
	return e.skipDeleted()
}

func (e *PostingsEnum) skipDeleted() uint32 {
	for e.idx < len(e.list) {
		doc := e.list[e.idx].DocID
		if e.deleted == nil || !e.deleted.Contains(doc) {
			return doc
		}
		e.idx++
	}
	return NoMoreDocs
}

// DocID returns the current document, or NoMoreDocs when exhausted.
func (e *PostingsEnum) DocID() uint32 {
	if e.idx < 0 || e.idx >= len(e.list) {
		return NoMoreDocs
	}
	return e.list[e.idx].DocID
}

// Positions returns the positions of the term in the current document.
func (e *PostingsEnum) Positions() []uint32 {
	if e.idx < 0 || e.idx >= len(e.list) {
		return nil
	}
	return e.list[e.idx].Positions
}

// Freq returns the number of occurrences in the current document.
func (e *PostingsEnum) Freq() int {
	return len(e.Positions())
}
