package clock

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Task is a one-shot scheduled callback keyed by its offset from loop start.
type Task struct {
	ID   uint64
	At   time.Duration
	Name string
	Fn   func()
}

// Loop owns a set of scheduled tasks and runs them one at a time in
// non-decreasing At order. Tasks scheduled with equal offsets run in the
// order they were added. Callbacks may schedule further tasks.
type Loop struct {
	clock Clock
	start time.Time

	mu     sync.Mutex
	queue  taskQueue
	nextID uint64
	wake   chan struct{}
	fired  int
}

// NewLoop creates a loop whose offsets are measured from clock.Now().
func NewLoop(c Clock) *Loop {
	if c == nil {
		c = Real{}
	}
	return &Loop{
		clock: c,
		start: c.Now(),
		wake:  make(chan struct{}, 1),
	}
}

// At schedules fn to run at offset from loop start. Offsets in the past run
// on the next turn of the loop.
func (l *Loop) At(offset time.Duration, name string, fn func()) uint64 {
	if offset < 0 {
		offset = 0
	}

	l.mu.Lock()
	l.nextID++
	t := &Task{ID: l.nextID, At: offset, Name: name, Fn: fn}
	heap.Push(&l.queue, t)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return t.ID
}

// After schedules fn to run d after the current loop time.
func (l *Loop) After(d time.Duration, name string, fn func()) uint64 {
	return l.At(l.Elapsed()+d, name, fn)
}

// Elapsed returns the time since loop start according to its clock.
func (l *Loop) Elapsed() time.Duration {
	return l.clock.Now().Sub(l.start)
}

// Pending returns the number of tasks not yet fired.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Len()
}

// Fired returns the number of tasks executed so far.
func (l *Loop) Fired() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fired
}

// Run executes tasks against the loop clock until no tasks remain or ctx is
// done. It must only be used with a clock that advances on its own.
func (l *Loop) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		next, ok := l.peek()
		if !ok {
			return nil
		}

		wait := next - l.Elapsed()
		if wait <= 0 {
			l.fireDue(l.Elapsed())
			continue
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-timer.C:
		}
	}
}

// Advance moves a Manual clock forward by d, firing every task that comes
// due on the way in order. The clock is stepped to each task's offset
// before it runs, so callbacks observe the time they were scheduled for.
func (l *Loop) Advance(d time.Duration) {
	m, ok := l.clock.(*Manual)
	if !ok {
		panic("clock: Advance requires a Manual clock")
	}

	target := l.Elapsed() + d
	for {
		next, ok := l.peek()
		if !ok || next > target {
			break
		}
		if next > l.Elapsed() {
			m.Set(l.start.Add(next))
		}
		l.fireDue(next)
	}
	m.Set(l.start.Add(target))
}

// Drain advances a Manual clock until no tasks remain.
func (l *Loop) Drain() {
	for {
		next, ok := l.peek()
		if !ok {
			return
		}
		l.Advance(max(next-l.Elapsed(), 0))
	}
}

func (l *Loop) peek() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.queue.Len() == 0 {
		return 0, false
	}
	return l.queue[0].At, true
}

// fireDue pops and runs every task with At <= now. The lock is released
// while a callback runs so it can schedule follow-ups.
func (l *Loop) fireDue(now time.Duration) {
	for {
		l.mu.Lock()
		if l.queue.Len() == 0 || l.queue[0].At > now {
			l.mu.Unlock()
			return
		}
		t := heap.Pop(&l.queue).(*Task)
		l.fired++
		l.mu.Unlock()

		t.Fn()
	}
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].At == q[j].At {
		return q[i].ID < q[j].ID
	}
	return q[i].At < q[j].At
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*Task)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
