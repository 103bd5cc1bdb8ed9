package index

// LeafContext places one segment reader inside a composite reader.
type LeafContext struct {
	Ord     int        // Position of the segment in the reader
	DocBase uint32     // Added to segment-local ids to form global ids
	Reader  LeafReader // nil for a segment that has nothing to offer
}

// Reader is an ordered, immutable list of segment readers.
type Reader struct {
	leaves []LeafContext
	maxDoc uint32
}

// NewReader assigns cumulative document bases to leaves in the given order.
// A nil LeafReader occupies an ordinal but no document ids.
func NewReader(leaves ...LeafReader) *Reader {
	r := &Reader{leaves: make([]LeafContext, len(leaves))}
	for i, leaf := range leaves {
		r.leaves[i] = LeafContext{Ord: i, DocBase: r.maxDoc, Reader: leaf}
		if leaf != nil {
			r.maxDoc += leaf.MaxDoc()
		}
	}
	return r
}

// Leaves returns the segment contexts in document-base order.
func (r *Reader) Leaves() []LeafContext {
	return r.leaves
}

// MaxDoc is the total number of allocated document ids.
func (r *Reader) MaxDoc() uint32 {
	return r.maxDoc
}

// NumDocs is the total number of live documents.
func (r *Reader) NumDocs() uint32 {
	var n uint32
	for _, leaf := range r.leaves {
		if leaf.Reader != nil {
			n += leaf.Reader.NumDocs()
		}
	}
	return n
}

// Leaf returns the context holding global document id doc.
func (r *Reader) Leaf(doc uint32) (LeafContext, bool) {
	for i := len(r.leaves) - 1; i >= 0; i-- {
		leaf := r.leaves[i]
		if leaf.Reader != nil && leaf.Reader.MaxDoc() > 0 && doc >= leaf.DocBase {
			if doc-leaf.DocBase < leaf.Reader.MaxDoc() {
				return leaf, true
			}
			return LeafContext{}, false
		}
	}
	return LeafContext{}, false
}
