package index

// FieldValue is one tokenized value of a document field.
// A multi-valued field is passed as several FieldValues with the same Field.
type FieldValue struct {
	Field  string
	Tokens []string
}

// SegmentWriter accumulates documents into an in-memory positional inverted index
// until Flush turns them into an immutable Segment. It is not safe for concurrent use;
// the indexing service serializes access.
type SegmentWriter struct {
	gap    uint32
	maxDoc uint32
	fields map[string]map[string]PostingList
}

// NewSegmentWriter creates a writer that separates successive values of the same
// field by positionIncrementGap positions. Negative gaps are treated as 0.
func NewSegmentWriter(positionIncrementGap int) *SegmentWriter {
	gap := uint32(0)
	if positionIncrementGap > 0 {
		gap = uint32(positionIncrementGap)
	}
	return &SegmentWriter{
		gap:    gap,
		fields: make(map[string]map[string]PostingList),
	}
}

// AddDocument indexes values under the next segment-local document id and returns it.
func (w *SegmentWriter) AddDocument(values []FieldValue) uint32 {
	doc := w.maxDoc
	w.maxDoc++

	nextPos := make(map[string]uint32)
	termPositions := make(map[string]map[string][]uint32)
	var fieldOrder []string
	termOrder := make(map[string][]string)

	for _, v := range values {
		pos, seen := nextPos[v.Field]
		if seen {
			pos += w.gap
		} else {
			fieldOrder = append(fieldOrder, v.Field)
			termPositions[v.Field] = make(map[string][]uint32)
		}
		terms := termPositions[v.Field]
		for _, tok := range v.Tokens {
			if _, ok := terms[tok]; !ok {
				termOrder[v.Field] = append(termOrder[v.Field], tok)
			}
			terms[tok] = append(terms[tok], pos)
			pos++
		}
		nextPos[v.Field] = pos
	}

	for _, field := range fieldOrder {
		postings, ok := w.fields[field]
		if !ok {
			postings = make(map[string]PostingList)
			w.fields[field] = postings
		}
		for _, term := range termOrder[field] {
			postings[term] = append(postings[term], PostingEntry{
				DocID:     doc,
				Positions: termPositions[field][term],
			})
		}
	}

	return doc
}

// NumDocs returns the number of documents buffered since the last flush.
func (w *SegmentWriter) NumDocs() uint32 {
	return w.maxDoc
}

// Flush returns the buffered documents as an immutable segment and resets the writer.
// It returns nil when nothing was buffered.
func (w *SegmentWriter) Flush() *Segment {
	if w.maxDoc == 0 {
		return nil
	}
	seg := newSegment(w.maxDoc, w.fields)
	w.maxDoc = 0
	w.fields = make(map[string]map[string]PostingList)
	return seg
}
