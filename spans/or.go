package spans

import "container/heap"

// orQueue is a min-heap of positioned child streams. Equal matches are
// ordered by clause index so the merge is deterministic.
type orQueue struct {
	items []orItem
}

type orItem struct {
	spans Spans
	ord   int
}

func (q *orQueue) Len() int { return len(q.items) }

func (q *orQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if c := Current(a.spans).Compare(Current(b.spans)); c != 0 {
		return c < 0
	}
	return a.ord < b.ord
}

func (q *orQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *orQueue) Push(x any) { q.items = append(q.items, x.(orItem)) }

func (q *orQueue) Pop() any {
	n := len(q.items)
	item := q.items[n-1]
	q.items = q.items[:n-1]
	return item
}

func (q *orQueue) top() Spans { return q.items[0].spans }

type orSpans struct {
	field   string
	clauses []Spans
	queue   *orQueue
	err     error
}

// NewOrSpans merges clauses into one ordered stream. Identical matches coming
// from different clauses are all emitted. nil clauses are ignored.
func NewOrSpans(field string, clauses []Spans) Spans {
	live := make([]Spans, 0, len(clauses))
	for _, c := range clauses {
		if c != nil {
			live = append(live, c)
		}
	}
	if len(live) == 0 {
		return Empty(field)
	}
	if len(live) == 1 {
		if live[0].Field() == field {
			return live[0]
		}
		return NewFieldMaskSpans(live[0], field)
	}
	return &orSpans{field: field, clauses: live}
}

// init positions every clause and fills the queue. It runs on the first call
// to Next or SkipTo.
func (s *orSpans) init(skip bool, target uint32) bool {
	s.queue = &orQueue{items: make([]orItem, 0, len(s.clauses))}
	for i, c := range s.clauses {
		var ok bool
		if skip {
			ok = c.SkipTo(target)
		} else {
			ok = c.Next()
		}
		if ok {
			s.queue.items = append(s.queue.items, orItem{spans: c, ord: i})
		} else if err := c.Err(); err != nil {
			s.err = err
			s.queue.items = nil
			return false
		}
	}
	heap.Init(s.queue)
	return s.queue.Len() > 0
}

func (s *orSpans) Next() bool {
	if s.err != nil {
		return false
	}
	if s.queue == nil {
		return s.init(false, 0)
	}
	if s.queue.Len() == 0 {
		return false
	}
	if s.queue.top().Next() {
		heap.Fix(s.queue, 0)
		return true
	}
	if !s.drop() {
		return false
	}
	return s.queue.Len() > 0
}

func (s *orSpans) SkipTo(target uint32) bool {
	if s.err != nil {
		return false
	}
	if s.queue == nil {
		return s.init(true, target)
	}
	skipped := false
	for s.queue.Len() > 0 && s.queue.top().Doc() < target {
		if s.queue.top().SkipTo(target) {
			heap.Fix(s.queue, 0)
		} else if !s.drop() {
			return false
		}
		skipped = true
	}
	if skipped {
		return s.queue.Len() > 0
	}
	return s.Next()
}

// drop removes the exhausted top clause. It reports false if the clause failed.
func (s *orSpans) drop() bool {
	exhausted := heap.Pop(s.queue).(orItem)
	if err := exhausted.spans.Err(); err != nil {
		s.err = err
		s.queue.items = nil
		return false
	}
	return true
}

func (s *orSpans) Doc() uint32 { return s.queue.top().Doc() }
func (s *orSpans) Start() uint32 { return s.queue.top().Start() }
func (s *orSpans) End() uint32 { return s.queue.top().End() }
func (s *orSpans) Field() string { return s.field }
func (s *orSpans) Err() error { return s.err }
