package sched

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestQueue_RunsInDueOrder(t *testing.T) {
	q := NewQueue()
	var order []string

	q.Schedule(epoch.Add(30*time.Millisecond), func(time.Time) { order = append(order, "c") })
	q.Schedule(epoch.Add(10*time.Millisecond), func(time.Time) { order = append(order, "a") })
	q.Schedule(epoch.Add(10*time.Millisecond), func(time.Time) { order = append(order, "b") })

	if ran := q.RunDue(epoch.Add(20 * time.Millisecond)); ran != 2 {
		t.Fatalf("expected 2 tasks to run, got %d", ran)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("expected [a b], got %v", order)
	}

	next, ok := q.Next()
	if !ok || !next.Equal(epoch.Add(30*time.Millisecond)) {
		t.Errorf("expected next due at +30ms, got %v (ok=%v)", next, ok)
	}
}

func TestQueue_ZeroTimeIsImmediate(t *testing.T) {
	q := NewQueue()
	ran := false
	q.Schedule(time.Time{}, func(time.Time) { ran = true })

	q.RunDue(epoch)
	if !ran {
		t.Error("expected zero-time task to run on first RunDue")
	}
}

func TestQueue_ChainedTasksDueNowRun(t *testing.T) {
	q := NewQueue()
	count := 0
	var step Task
	step = func(now time.Time) {
		count++
		if count < 3 {
			q.Schedule(now, step)
		}
	}
	q.Schedule(epoch, step)

	q.RunDue(epoch)
	if count != 3 {
		t.Errorf("expected chained tasks to run in the same call, got %d", count)
	}
}

func TestQueue_Cancel(t *testing.T) {
	q := NewQueue()
	ran := false
	h := q.Schedule(epoch, func(time.Time) { ran = true })
	q.Cancel(h)

	if q.Len() != 0 {
		t.Errorf("expected no pending tasks, got %d", q.Len())
	}
	q.RunDue(epoch.Add(time.Second))
	if ran {
		t.Error("expected cancelled task not to run")
	}
	if _, ok := q.Next(); ok {
		t.Error("expected empty queue")
	}
}

func TestQueue_ClearFromTask(t *testing.T) {
	q := NewQueue()
	later := false
	q.Schedule(epoch, func(time.Time) { q.Clear() })
	q.Schedule(epoch, func(time.Time) { later = true })

	q.RunDue(epoch)
	if later {
		t.Error("expected Clear inside a task to drop the remaining tasks")
	}
}
