package index

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// LeafReader is the read-only view of one segment that query compilation consumes.
type LeafReader interface {
	// MaxDoc is one greater than the largest segment-local document id.
	MaxDoc() uint32
	// NumDocs is the number of live documents.
	NumDocs() uint32
	// HasField reports whether any document in the segment indexed field.
	HasField(field string) bool
	// Postings returns the postings of term in field, or nil when the term is absent.
	// A non-nil error means the segment could not be read.
	Postings(field, term string) (*PostingsEnum, error)
}

// Segment is an immutable block of postings plus a mutable set of deleted documents.
type Segment struct {
	maxDoc uint32
	fields map[string]map[string]PostingList

	mu      sync.RWMutex
	deleted *roaring.Bitmap
}

func newSegment(maxDoc uint32, fields map[string]map[string]PostingList) *Segment {
	return &Segment{
		maxDoc:  maxDoc,
		fields:  fields,
		deleted: roaring.New(),
	}
}

// NewSegment builds a segment from pre-built postings. Each PostingList must be sorted by DocID
// and every DocID must be below maxDoc.
func NewSegment(maxDoc uint32, fields map[string]map[string]PostingList) *Segment {
	if fields == nil {
		fields = make(map[string]map[string]PostingList)
	}
	return newSegment(maxDoc, fields)
}

// Delete marks doc as deleted. It reports whether the document was live.
func (s *Segment) Delete(doc uint32) bool {
	if doc >= s.maxDoc {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleted.CheckedAdd(doc)
}

// MaxDoc returns the number of document ids allocated in the segment.
func (s *Segment) MaxDoc() uint32 {
	return s.maxDoc
}

// NumDeleted returns the number of deleted documents.
func (s *Segment) NumDeleted() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint32(s.deleted.GetCardinality())
}

// Snapshot returns a point-in-time reader. Deletions made after the call are not visible to it,
// so streams opened on the snapshot never see documents disappear mid-iteration.
func (s *Segment) Snapshot() LeafReader {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &segmentView{seg: s, deleted: s.deleted.Clone()}
}

type segmentView struct {
	seg     *Segment
	deleted *roaring.Bitmap
}

func (v *segmentView) MaxDoc() uint32 {
	return v.seg.maxDoc
}

func (v *segmentView) NumDocs() uint32 {
	return v.seg.maxDoc - uint32(v.deleted.GetCardinality())
}

func (v *segmentView) HasField(field string) bool {
	_, ok := v.seg.fields[field]
	return ok
}

func (v *segmentView) Postings(field, term string) (*PostingsEnum, error) {
	terms, ok := v.seg.fields[field]
	if !ok {
		return nil, nil
	}
	list, ok := terms[term]
	if !ok {
		return nil, nil
	}
	deleted := v.deleted
	if deleted.IsEmpty() {
		deleted = nil
	}
	return NewPostingsEnum(list, deleted), nil
}
