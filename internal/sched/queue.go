// Package sched provides the explicit timer queue that drives cooperative
// pauses. Nothing here reads a clock: callers pass the current time in.
package sched

import (
	"container/heap"
	"time"
)

// Task is a scheduled continuation
type Task func(now time.Time)

// Handle identifies a scheduled task so it can be cancelled
type Handle uint64

type entry struct {
	at     time.Time
	seq    uint64 // tie breaker: equal due times run in scheduling order
	handle Handle
	task   Task
}

type entries []*entry

func (e entries) Len() int { return len(e) }
func (e entries) Less(i, j int) bool {
	if e[i].at.Equal(e[j].at) {
		return e[i].seq < e[j].seq
	}
	return e[i].at.Before(e[j].at)
}
func (e entries) Swap(i, j int) { e[i], e[j] = e[j], e[i] }
func (e *entries) Push(x any)   { *e = append(*e, x.(*entry)) }
func (e *entries) Pop() any {
	old := *e
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*e = old[:n-1]
	return item
}

// Queue is a min-heap of tasks ordered by due time.
//
// Queue is not safe for concurrent use.
type Queue struct {
	items     entries
	seq       uint64
	cancelled map[Handle]bool
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{cancelled: make(map[Handle]bool)}
}

// Schedule queues task to run once now >= at. A zero at is due immediately.
func (q *Queue) Schedule(at time.Time, task Task) Handle {
	q.seq++
	h := Handle(q.seq)
	heap.Push(&q.items, &entry{at: at, seq: q.seq, handle: h, task: task})
	return h
}

// Cancel drops a scheduled task. Cancelling an unknown or finished handle is a no-op.
func (q *Queue) Cancel(h Handle) {
	for _, e := range q.items {
		if e.handle == h {
			q.cancelled[h] = true
			return
		}
	}
}

// Clear drops every scheduled task
func (q *Queue) Clear() {
	q.items = nil
	clear(q.cancelled)
}

// Len returns the number of pending tasks, cancelled ones excluded
func (q *Queue) Len() int {
	return len(q.items) - len(q.cancelled)
}

// Next returns the due time of the earliest pending task
func (q *Queue) Next() (time.Time, bool) {
	q.dropCancelled()
	if len(q.items) == 0 {
		return time.Time{}, false
	}
	return q.items[0].at, true
}

// RunDue runs every task due at or before now, including tasks that due
// tasks schedule for a time not after now. It returns the number of tasks run.
func (q *Queue) RunDue(now time.Time) int {
	ran := 0
	for {
		q.dropCancelled()
		if len(q.items) == 0 || q.items[0].at.After(now) {
			return ran
		}
		e := heap.Pop(&q.items).(*entry)
		e.task(now)
		ran++
	}
}

func (q *Queue) dropCancelled() {
	for len(q.items) > 0 && q.cancelled[q.items[0].handle] {
		e := heap.Pop(&q.items).(*entry)
		delete(q.cancelled, e.handle)
	}
}
