// Package spans implements position-match streams: pull sources of
// (document, start, end) triples ordered by document, then start, then end.
//
// Ends are exclusive, so a single token at position p is the span (p, p+1).
// A stream is advanced by exactly one caller and never goes backward.
package spans

import (
	"fmt"
	"sort"
)

// Spans is a pull cursor over position matches of one field.
//
// Before the first call to Next or SkipTo the cursor is unpositioned and
// Doc, Start and End are undefined. Once Next or SkipTo returns false the
// cursor is exhausted and Err tells apart normal exhaustion (nil) from a fault.
type Spans interface {
	// Next moves to the next match.
	Next() bool
	// SkipTo moves to the first match beyond the current one whose document is >= target.
	SkipTo(target uint32) bool
	Doc() uint32
	Start() uint32
	End() uint32
	// Field is the field identity the matches are reported under.
	Field() string
	Err() error
}

// Match is one materialized position match.
type Match struct {
	Doc   uint32 `json:"doc"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// Compare orders matches by document, start, then end.
func (m Match) Compare(o Match) int {
	switch {
	case m.Doc != o.Doc:
		return cmpUint32(m.Doc, o.Doc)
	case m.Start != o.Start:
		return cmpUint32(m.Start, o.Start)
	default:
		return cmpUint32(m.End, o.End)
	}
}

func (m Match) String() string {
	return fmt.Sprintf("(%d,%d,%d)", m.Doc, m.Start, m.End)
}

func cmpUint32(a, b uint32) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Current returns the match s is positioned on.
func Current(s Spans) Match {
	return Match{Doc: s.Doc(), Start: s.Start(), End: s.End()}
}

// Collect drains s. A nil stream yields no matches.
func Collect(s Spans) ([]Match, error) {
	if s == nil {
		return nil, nil
	}
	var out []Match
	for s.Next() {
		out = append(out, Current(s))
	}
	return out, s.Err()
}

// Empty returns an exhausted stream for field.
func Empty(field string) Spans {
	return emptySpans(field)
}

type emptySpans string

func (emptySpans) Next() bool { return false }
func (emptySpans) SkipTo(uint32) bool { return false }
func (emptySpans) Doc() uint32 { return 0 }
func (emptySpans) Start() uint32 { return 0 }
func (emptySpans) End() uint32 { return 0 }
func (e emptySpans) Field() string { return string(e) }
func (emptySpans) Err() error { return nil }

// FromMatches adapts an already ordered list of matches, such as an externally
// computed multi-position term, to the Spans protocol. The slice is not copied.
func FromMatches(field string, matches []Match) Spans {
	return &sliceSpans{field: field, matches: matches, i: -1}
}

type sliceSpans struct {
	field   string
	matches []Match
	i       int
}

func (s *sliceSpans) Next() bool {
	if s.i < len(s.matches) {
		s.i++
	}
	return s.i < len(s.matches)
}

func (s *sliceSpans) SkipTo(target uint32) bool {
	from := s.i + 1
	if from >= len(s.matches) {
		s.i = len(s.matches)
		return false
	}
	rest := s.matches[from:]
	s.i = from + sort.Search(len(rest), func(j int) bool {
		return rest[j].Doc >= target
	})
	return s.i < len(s.matches)
}

func (s *sliceSpans) Doc() uint32 { return s.matches[s.i].Doc }
func (s *sliceSpans) Start() uint32 { return s.matches[s.i].Start }
func (s *sliceSpans) End() uint32 { return s.matches[s.i].End }
func (s *sliceSpans) Field() string { return s.field }
func (s *sliceSpans) Err() error { return nil }
