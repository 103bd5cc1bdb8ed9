package spans

import "github.com/gcbaptista/go-span-search/index"

// termSpans expands a postings cursor into one single-token span per position.
type termSpans struct {
	field    string
	postings *index.PostingsEnum

	started   bool
	exhausted bool
	doc       uint32
	positions []uint32
	i         int
}

// NewTermSpans creates the stream of every occurrence in postings. A nil
// postings cursor (term absent from the segment) gives an exhausted stream.
func NewTermSpans(field string, postings *index.PostingsEnum) Spans {
	if postings == nil {
		return Empty(field)
	}
	return &termSpans{field: field, postings: postings}
}

func (s *termSpans) Next() bool {
	if s.exhausted {
		return false
	}
	if s.started && s.i+1 < len(s.positions) {
		s.i++
		return true
	}
	s.started = true
	return s.load(s.postings.NextDoc())
}

func (s *termSpans) SkipTo(target uint32) bool {
	if s.exhausted {
		return false
	}
	if s.started && s.doc >= target {
		return s.Next()
	}
	s.started = true
	return s.load(s.postings.Advance(target))
}

// load positions the stream on the first occurrence in doc, skipping
// entries that carry no positions.
func (s *termSpans) load(doc uint32) bool {
	for doc != index.NoMoreDocs {
		if positions := s.postings.Positions(); len(positions) > 0 {
			s.doc, s.positions, s.i = doc, positions, 0
			return true
		}
		doc = s.postings.NextDoc()
	}
	s.exhausted = true
	s.positions = nil
	return false
}

func (s *termSpans) Doc() uint32 { return s.doc }
func (s *termSpans) Start() uint32 { return s.positions[s.i] }
func (s *termSpans) End() uint32 { return s.positions[s.i] + 1 }
func (s *termSpans) Field() string { return s.field }
func (s *termSpans) Err() error { return nil }
