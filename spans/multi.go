package spans

// SegmentSpans is the stream of one segment together with the global id of
// its first document. Spans is nil when the segment cannot match.
type SegmentSpans struct {
	DocBase uint32
	Spans   Spans
}

type multiSpans struct {
	field    string
	segments []SegmentSpans
	cur      int
	err      error
}

// NewMultiSpans stitches per-segment streams, given in ascending DocBase order,
// into one stream over global document ids. Segments are exhausted one after
// the other; nil segment streams are skipped.
func NewMultiSpans(field string, segments []SegmentSpans) Spans {
	return &multiSpans{field: field, segments: segments}
}

func (s *multiSpans) Next() bool {
	for s.err == nil && s.cur < len(s.segments) {
		if sp := s.segments[s.cur].Spans; sp != nil {
			if sp.Next() {
				return true
			}
			if s.fail(sp) {
				return false
			}
		}
		s.cur++
	}
	return false
}

func (s *multiSpans) SkipTo(target uint32) bool {
	for s.err == nil && s.cur < len(s.segments) {
		seg := s.segments[s.cur]
		if seg.Spans != nil {
			var local uint32
			if target > seg.DocBase {
				local = target - seg.DocBase
			}
			if seg.Spans.SkipTo(local) {
				return true
			}
			if s.fail(seg.Spans) {
				return false
			}
		}
		s.cur++
	}
	return false
}

func (s *multiSpans) fail(sp Spans) bool {
	s.err = sp.Err()
	return s.err != nil
}

func (s *multiSpans) Doc() uint32 {
	seg := s.segments[s.cur]
	return seg.DocBase + seg.Spans.Doc()
}

func (s *multiSpans) Start() uint32 { return s.segments[s.cur].Spans.Start() }
func (s *multiSpans) End() uint32 { return s.segments[s.cur].Spans.End() }
func (s *multiSpans) Field() string { return s.field }
func (s *multiSpans) Err() error { return s.err }
