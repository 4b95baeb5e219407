package rpc

import (
	"container/heap"
	"time"
)

// TimerCallback is invoked when a timer fires. Every timer the engine
// starts is one-shot: the scheduler always removes the entry before
// invoking it, so the return value exists only so callers resemble the
// original fire-once-and-report-removed contract.
type TimerCallback func() bool

// Scheduler is the timeout scheduler contract the engine consumes
// (spec.md §4.D): start/stop per-session timers, and advance them from
// Update, which drives callbacks inline on the calling goroutine.
type Scheduler interface {
	StartTimer(timeoutMS int64, cb TimerCallback) int64
	StopTimer(timerID int64)
	Update() int
	TimerNum() int
}

// timerEntry is one scheduled callback. Cancellation is lazy: StopTimer
// marks the entry canceled and drops it from the live-count index, but
// leaves it in the heap to be skipped (and discarded) the next time
// Update pops past it.
type timerEntry struct {
	id       int64
	deadline time.Time
	cb       TimerCallback
	index    int
	canceled bool
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x interface{}) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// sequenceScheduler is the default Scheduler: a deadline min-heap. No
// retrieved example ships a timer-wheel or deadline-heap library for this
// purpose (see DESIGN.md), so it is built directly on container/heap.
type sequenceScheduler struct {
	heap   timerHeap
	byID   map[int64]*timerEntry
	nextID int64
	now    func() time.Time
}

// NewScheduler returns the default heap-based Scheduler implementation.
func NewScheduler() Scheduler {
	return &sequenceScheduler{
		byID: make(map[int64]*timerEntry),
		now:  time.Now,
	}
}

func (s *sequenceScheduler) StartTimer(timeoutMS int64, cb TimerCallback) int64 {
	s.nextID++
	id := s.nextID
	e := &timerEntry{
		id:       id,
		deadline: s.now().Add(time.Duration(timeoutMS) * time.Millisecond),
		cb:       cb,
	}
	heap.Push(&s.heap, e)
	s.byID[id] = e
	return id
}

func (s *sequenceScheduler) StopTimer(timerID int64) {
	e, ok := s.byID[timerID]
	if !ok {
		return
	}
	e.canceled = true
	delete(s.byID, timerID)
}

func (s *sequenceScheduler) Update() int {
	fired := 0
	now := s.now()
	for s.heap.Len() > 0 {
		top := s.heap[0]
		if top.canceled {
			heap.Pop(&s.heap)
			continue
		}
		if top.deadline.After(now) {
			break
		}
		heap.Pop(&s.heap)
		delete(s.byID, top.id)
		if top.cb != nil {
			top.cb()
		}
		fired++
	}
	return fired
}

func (s *sequenceScheduler) TimerNum() int {
	return len(s.byID)
}
