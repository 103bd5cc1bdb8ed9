package spans

import (
	"fmt"

	"github.com/gcbaptista/go-span-search/internal/errors"
)

// Check wraps in with a verifier of the stream contract. The first match that
// goes backward, has start > end, or lands before a SkipTo target stops the
// stream, and Err reports an InvariantViolationError naming operator.
func Check(in Spans, operator string) Spans {
	if in == nil {
		return nil
	}
	return &checkedSpans{in: in, operator: operator}
}

type checkedSpans struct {
	in       Spans
	operator string
	prev     Match
	started  bool
	err      error
}

func (s *checkedSpans) Next() bool {
	if s.err != nil || !s.in.Next() {
		return false
	}
	return s.verify(0)
}

func (s *checkedSpans) SkipTo(target uint32) bool {
	if s.err != nil || !s.in.SkipTo(target) {
		return false
	}
	return s.verify(target)
}

func (s *checkedSpans) verify(target uint32) bool {
	m := Current(s.in)
	switch {
	case m.Start > m.End:
		s.violate(fmt.Sprintf("match %s has start after end", m))
	case s.started && m.Compare(s.prev) < 0:
		s.violate(fmt.Sprintf("match %s after %s", m, s.prev))
	case m.Doc < target:
		s.violate(fmt.Sprintf("skip to %d landed on %s", target, m))
	}
	if s.err != nil {
		return false
	}
	s.prev, s.started = m, true
	return true
}

func (s *checkedSpans) violate(detail string) {
	s.err = errors.NewInvariantViolationError(s.operator, detail)
}

func (s *checkedSpans) Doc() uint32 { return s.in.Doc() }
func (s *checkedSpans) Start() uint32 { return s.in.Start() }
func (s *checkedSpans) End() uint32 { return s.in.End() }
func (s *checkedSpans) Field() string { return s.in.Field() }

func (s *checkedSpans) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.in.Err()
}
