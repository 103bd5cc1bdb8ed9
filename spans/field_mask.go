package spans

// NewFieldMaskSpans reports the matches of in under field. Positions, order
// and count are forwarded untouched. A nil child stays nil.
func NewFieldMaskSpans(in Spans, field string) Spans {
	if in == nil {
		return nil
	}
	return &fieldMaskSpans{Spans: in, field: field}
}

type fieldMaskSpans struct {
	Spans
	field string
}

func (s *fieldMaskSpans) Field() string { return s.field }
