// Package schedule implements the three time-ordered collections every
// clock owns: a min-heap of timed events, an unordered set of
// conditional events, and an insertion-ordered sequence of periodic
// samples (spec.md §3 "Schedule invariants", §4.5). The event heap is
// built on container/heap, grounded on the same shape used by
// time-machine-style heaps in the wider Go ecosystem (e.g. storj's
// time2.Machine timerHeap).
package schedule

import (
	"container/heap"
	"sync"

	"github.com/butter-bot-machines/desim/pkg/action"
	"github.com/butter-bot-machines/desim/pkg/vtime"
)

// Event is a scheduled, one-shot or repeating Action.
type Event struct {
	TFire  vtime.Time
	ID     uint64
	Action *action.Action
	Cycle  vtime.Duration // 0 for one-shot
	N      uint32         // remaining fire count; 1 for one-shot

	index int // heap bookkeeping
}

// Condition is a predicate/action pair checked at every condition tick.
type Condition struct {
	Action    *action.Action
	Predicate *action.Action
}

// Sample is an Action fired at every sample tick, in registration
// order.
type Sample struct {
	Action *action.Action
}

// Schedule holds one clock's timed events, conditions, and samples,
// plus the monotone id counter used to break (t_fire) ties in FIFO
// order (Schedule invariant 2).
type Schedule struct {
	mu         sync.Mutex
	events     eventHeap
	conditions []*Condition
	samples    []*Sample
	nextID     uint64
}

// New creates an empty Schedule.
func New() *Schedule {
	s := &Schedule{}
	heap.Init(&s.events)
	return s
}

// NextID returns the next monotone event id, for ordering events fired
// at the same t_fire (Schedule invariant 1/2).
func (s *Schedule) NextID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id
}

// PushEvent inserts ev into the timed-event heap. O(log n).
func (s *Schedule) PushEvent(ev *Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	heap.Push(&s.events, ev)
}

// PopDue removes and returns every event with TFire <= t, in
// ascending (TFire, ID) order. O(k log n) for k returned events.
func (s *Schedule) PopDue(t vtime.Time) []*Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*Event
	for len(s.events) > 0 && !s.events[0].TFire.After(t) {
		due = append(due, heap.Pop(&s.events).(*Event))
	}
	return due
}

// NextEventTime reports the earliest TFire in the heap, if any.
func (s *Schedule) NextEventTime() (vtime.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return 0, false
	}
	return s.events[0].TFire, true
}

// PushCondition registers a condition; pass the same pointer to
// RemoveCondition to unregister it. O(1).
func (s *Schedule) PushCondition(c *Condition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conditions = append(s.conditions, c)
}

// RemoveCondition removes c from the condition set, if present. O(n)
// in the number of live conditions (expected small; conditions are
// removed as soon as they fire).
func (s *Schedule) RemoveCondition(c *Condition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cand := range s.conditions {
		if cand == c {
			s.conditions = append(s.conditions[:i], s.conditions[i+1:]...)
			return
		}
	}
}

// Conditions returns a snapshot of the live conditions.
func (s *Schedule) Conditions() []*Condition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Condition, len(s.conditions))
	copy(out, s.conditions)
	return out
}

// HasConditions reports whether any condition is registered (Schedule
// invariant 4: this forces a finite effective sample interval).
func (s *Schedule) HasConditions() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conditions) > 0
}

// PushSample registers s at the end of the sample sequence. O(1).
func (s *Schedule) PushSample(sample *Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
}

// Samples returns the samples in registration order.
func (s *Schedule) Samples() []*Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// IsEmpty reports whether the schedule has no events, conditions, or
// samples left.
func (s *Schedule) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events) == 0 && len(s.conditions) == 0 && len(s.samples) == 0
}

// Reset clears every collection and resets the id counter, for
// clock.Reset (spec.md §3 "Lifecycles").
func (s *Schedule) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.conditions = nil
	s.samples = nil
	s.nextID = 0
}

// eventHeap implements container/heap.Interface ordered by
// (TFire, ID), the ordering key named in spec.md §3 "Event".
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].TFire != h[j].TFire {
		return h[i].TFire < h[j].TFire
	}
	return h[i].ID < h[j].ID
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x interface{}) {
	ev := x.(*Event)
	ev.index = len(*h)
	*h = append(*h, ev)
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	ev.index = -1
	*h = old[:n-1]
	return ev
}
