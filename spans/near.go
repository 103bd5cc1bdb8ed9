package spans

import "slices"

type nearState int

const (
	nearSeeking nearState = iota
	nearMatched
	nearExhausted
)

type window struct {
	start, end uint32
}

// nearSpans matches documents present in every clause and emits, per document,
// each minimal window in which one match per clause fits within slop.
//
// The cost of a combination is the gap it leaves uncovered:
// (max end - min start) - sum of the chosen match lengths. Adjacent single
// tokens cost 0, co-located ones cost -1.
type nearSpans struct {
	field   string
	clauses []Spans
	slop    int64
	ordered bool

	// live[i] reports whether clauses[i] is positioned on a match not yet buffered.
	live    []bool
	buffers [][]window
	state   nearState
	err     error

	doc     uint32
	windows []window
	w       int
}

// NewNearSpans creates a proximity conjunction. When ordered, each clause's match
// must end at or before the next clause's match starts. A nil clause means the
// conjunction cannot match and yields nil.
func NewNearSpans(field string, clauses []Spans, slop int, ordered bool) Spans {
	if len(clauses) == 0 {
		return nil
	}
	for _, c := range clauses {
		if c == nil {
			return nil
		}
	}
	return &nearSpans{
		field:   field,
		clauses: clauses,
		slop:    int64(slop),
		ordered: ordered,
		live:    make([]bool, len(clauses)),
		buffers: make([][]window, len(clauses)),
		w:       -1,
	}
}

func (s *nearSpans) Next() bool {
	switch s.state {
	case nearExhausted:
		return false
	case nearMatched:
		if s.w+1 < len(s.windows) {
			s.w++
			return true
		}
		return s.nextDoc()
	}
	for i, c := range s.clauses {
		if !s.advance(i, c.Next()) {
			return false
		}
	}
	return s.nextDoc()
}

func (s *nearSpans) SkipTo(target uint32) bool {
	switch s.state {
	case nearExhausted:
		return false
	case nearMatched:
		if s.doc >= target {
			return s.Next()
		}
		for i, c := range s.clauses {
			if s.live[i] && c.Doc() < target && !s.advance(i, c.SkipTo(target)) {
				return false
			}
		}
		return s.nextDoc()
	}
	for i, c := range s.clauses {
		if !s.advance(i, c.SkipTo(target)) {
			return false
		}
	}
	return s.nextDoc()
}

// advance records the outcome of moving clause i and exhausts the
// conjunction when the clause has no more matches.
func (s *nearSpans) advance(i int, ok bool) bool {
	s.live[i] = ok
	if ok {
		return true
	}
	s.err = s.clauses[i].Err()
	s.exhaust()
	return false
}

func (s *nearSpans) exhaust() {
	s.state = nearExhausted
	s.windows = nil
}

// nextDoc finds the next document shared by all clauses that yields at least one window.
func (s *nearSpans) nextDoc() bool {
	s.state = nearSeeking
	for {
		for i := range s.live {
			if !s.live[i] {
				s.exhaust()
				return false
			}
		}
		if !s.align() {
			return false
		}
		doc := s.clauses[0].Doc()
		if !s.buffer(doc) {
			return false
		}
		if windows := s.match(); len(windows) > 0 {
			s.doc, s.windows, s.w = doc, windows, 0
			s.state = nearMatched
			return true
		}
	}
}

// align leapfrogs the clauses until all sit on the same document.
func (s *nearSpans) align() bool {
	for {
		target := s.clauses[0].Doc()
		for _, c := range s.clauses[1:] {
			if d := c.Doc(); d > target {
				target = d
			}
		}
		aligned := true
		for i, c := range s.clauses {
			if c.Doc() < target {
				aligned = false
				if !s.advance(i, c.SkipTo(target)) {
					return false
				}
			}
		}
		if aligned {
			return true
		}
	}
}

// buffer copies every match of doc from each clause, leaving each clause on
// its first match past doc.
func (s *nearSpans) buffer(doc uint32) bool {
	for i, c := range s.clauses {
		buf := s.buffers[i][:0]
		for s.live[i] && c.Doc() == doc {
			buf = append(buf, window{start: c.Start(), end: c.End()})
			s.live[i] = c.Next()
		}
		s.buffers[i] = buf
		if !s.live[i] {
			if err := c.Err(); err != nil {
				s.err = err
				s.exhaust()
				return false
			}
		}
	}
	return true
}

func (s *nearSpans) match() []window {
	var candidates []window
	if s.ordered {
		candidates = orderedWindows(s.buffers, s.slop)
	} else {
		candidates = unorderedWindows(s.buffers, s.slop)
	}
	return minimalWindows(candidates)
}

func cost(start, end uint32, covered int64) int64 {
	return int64(end) - int64(start) - covered
}

func length(w window) int64 {
	return int64(w.end - w.start)
}

// byEnd returns the indexes of list ordered by match end.
func byEnd(list []window) []int {
	order := make([]int, len(list))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmpUint32(list[a].end, list[b].end) })
	return order
}

// unorderedWindows anchors a window at every match in turn. With the anchor
// as the leftmost match, it sweeps candidate ends in ascending order and keeps,
// for every other clause, the longest match that starts at or after the anchor
// and ends within the candidate end. The first end whose cost fits slop gives
// the narrowest window for that anchor. A candidate wider than the combination
// it was built from always contains a narrower candidate and is pruned by
// minimalWindows.
func unorderedWindows(lists [][]window, slop int64) []window {
	orders := make([][]int, len(lists))
	var ends []uint32
	for i, list := range lists {
		orders[i] = byEnd(list)
		for _, w := range list {
			ends = append(ends, w.end)
		}
	}
	slices.Sort(ends)
	ends = slices.Compact(ends)

	best := make([]int64, len(lists))
	pos := make([]int, len(lists))
	var out []window
	for a, list := range lists {
		for _, anchor := range list {
			for i := range lists {
				best[i], pos[i] = -1, 0
			}
			best[a] = length(anchor)
			missing := len(lists) - 1

			for _, end := range ends {
				if end < anchor.end {
					continue
				}
				for i, order := range orders {
					if i == a {
						continue
					}
					for ; pos[i] < len(order) && lists[i][order[pos[i]]].end <= end; pos[i]++ {
						w := lists[i][order[pos[i]]]
						if w.start < anchor.start {
							continue
						}
						if best[i] < 0 {
							missing--
						}
						best[i] = max(best[i], length(w))
					}
				}
				if missing > 0 {
					continue
				}
				var covered int64
				for _, b := range best {
					covered += b
				}
				if cost(anchor.start, end, covered) <= slop {
					out = append(out, window{start: anchor.start, end: end})
					break
				}
			}
		}
	}
	return out
}

// orderedWindows starts a chain at every match of the first clause. For each
// following clause it records, per match, the largest length a chain ending on
// that match can cover, considering every predecessor that ends at or before
// the match starts. Every reachable last match whose chain fits slop yields a
// candidate window.
func orderedWindows(lists [][]window, slop int64) []window {
	orders := make([][]int, len(lists))
	covered := make([][]int64, len(lists))
	for i, list := range lists {
		orders[i] = byEnd(list)
		covered[i] = make([]int64, len(list))
	}

	var out []window
	for _, first := range lists[0] {
		prev, prevCovered, prevOrder := []window{first}, []int64{length(first)}, []int{0}
		for i := 1; i < len(lists); i++ {
			cur := covered[i]
			p, reach := 0, int64(-1)
			// lists[i] is sorted by start, so the set of usable predecessors only grows.
			for j, w := range lists[i] {
				for ; p < len(prevOrder) && prev[prevOrder[p]].end <= w.start; p++ {
					reach = max(reach, prevCovered[prevOrder[p]])
				}
				cur[j] = -1
				if reach >= 0 {
					cur[j] = reach + length(w)
				}
			}
			prev, prevCovered, prevOrder = lists[i], cur, orders[i]
		}
		for j, last := range prev {
			if prevCovered[j] >= 0 && cost(first.start, last.end, prevCovered[j]) <= slop {
				out = append(out, window{start: first.start, end: last.end})
			}
		}
	}
	return out
}

// minimalWindows sorts candidates, removes duplicates and drops every window
// that strictly contains another one. The result has strictly increasing
// starts and strictly increasing ends.
func minimalWindows(candidates []window) []window {
	if len(candidates) == 0 {
		return nil
	}
	slices.SortFunc(candidates, func(a, b window) int {
		if a.start != b.start {
			return cmpUint32(a.start, b.start)
		}
		return cmpUint32(a.end, b.end)
	})
	candidates = slices.Compact(candidates)

	keep := make([]bool, len(candidates))
	minEnd := candidates[len(candidates)-1].end
	kept := 0
	for i := len(candidates) - 1; i >= 0; i-- {
		c := candidates[i]
		sameStartBefore := i > 0 && candidates[i-1].start == c.start
		if (i == len(candidates)-1 || c.end < minEnd) && !sameStartBefore {
			keep[i] = true
			kept++
		}
		if c.end < minEnd {
			minEnd = c.end
		}
	}

	out := make([]window, 0, kept)
	for i, c := range candidates {
		if keep[i] {
			out = append(out, c)
		}
	}
	return out
}

func (s *nearSpans) Doc() uint32 { return s.doc }
func (s *nearSpans) Start() uint32 { return s.windows[s.w].start }
func (s *nearSpans) End() uint32 { return s.windows[s.w].end }
func (s *nearSpans) Field() string { return s.field }
func (s *nearSpans) Err() error { return s.err }
