// Package executor drives poll-style tasks on a single goroutine.
//
// A Task is polled with a ringbuf.Waker. When it cannot make progress it
// leaves the waker with whatever it is waiting on (typically a ring) and
// returns false. The task is polled again only after its waker fires. Wakers
// may fire from any goroutine.
//
//	ex := executor.New()
//	ex.Spawn("reader", executor.TaskFunc(func(w ringbuf.Waker) bool { ... }))
//	err := ex.Run(ctx)
package executor

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gammazero/deque"
	"github.com/google/uuid"

	"github.com/haivivi/ringbuf/pkg/ringbuf"
)

// ErrStalled is returned by RunUntilStalled when tasks are still pending but
// none of them has been woken.
var ErrStalled = errors.New("executor: all tasks pending, nothing runnable")

// Task is a unit of work driven by repeated polls. Poll returns true once the
// task has finished; it is never polled again after that.
type Task interface {
	Poll(w ringbuf.Waker) bool
}

// TaskFunc adapts a function to Task.
type TaskFunc func(w ringbuf.Waker) bool

// Poll calls f(w).
func (f TaskFunc) Poll(w ringbuf.Waker) bool { return f(w) }

type task struct {
	id    string
	name  string
	t     Task
	waker *taskWaker
	polls int

	// guarded by Executor.mu
	queued bool
	done   bool
}

type taskWaker struct {
	e *Executor
	t *task
}

// Wake re-queues the task. Wakes are coalesced while the task is queued and
// ignored once it has finished.
func (w *taskWaker) Wake() {
	w.e.wake(w.t)
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for task lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.log = l
	}
}

// Executor is a cooperative, single-goroutine task runner. Spawn and the
// task wakers are safe for concurrent use; Run must only be called from one
// goroutine at a time.
type Executor struct {
	log    *slog.Logger
	notify chan struct{}

	mu      sync.Mutex
	runq    *deque.Deque[*task]
	pending int
}

// New creates an empty Executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		log:    slog.Default(),
		notify: make(chan struct{}, 1),
		runq:   deque.New[*task](),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Spawn adds t to the executor as runnable and returns its ID.
func (e *Executor) Spawn(name string, t Task) string {
	tk := &task{
		id:   uuid.New().String(),
		name: name,
		t:    t,
	}
	tk.waker = &taskWaker{e: e, t: tk}

	e.mu.Lock()
	e.pending++
	e.mu.Unlock()

	e.log.Debug("executor: spawn", "task", name, "id", tk.id)
	e.wake(tk)
	return tk.id
}

// Pending returns the number of tasks that have not finished.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

func (e *Executor) wake(t *task) {
	e.mu.Lock()
	if t.done || t.queued {
		e.mu.Unlock()
		return
	}
	t.queued = true
	e.runq.PushBack(t)
	e.mu.Unlock()

	select {
	case e.notify <- struct{}{}:
	default:
	}
}

// Run polls tasks until all have finished or ctx is done. While every
// remaining task is suspended, Run blocks until one is woken.
func (e *Executor) Run(ctx context.Context) error {
	return e.run(ctx, false)
}

// RunUntilStalled is Run without blocking: it returns ErrStalled as soon as
// no task is runnable while some are still pending.
func (e *Executor) RunUntilStalled() error {
	return e.run(context.Background(), true)
}

func (e *Executor) run(ctx context.Context, stall bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		e.mu.Lock()
		if e.pending == 0 {
			e.mu.Unlock()
			return nil
		}
		if e.runq.Len() == 0 {
			pending := e.pending
			e.mu.Unlock()
			if stall {
				e.log.Debug("executor: stalled", "pending", pending)
				return ErrStalled
			}
			select {
			case <-e.notify:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		t := e.runq.PopFront()
		t.queued = false
		if t.done {
			// woken during its final poll
			e.mu.Unlock()
			continue
		}
		e.mu.Unlock()

		t.polls++
		if !t.t.Poll(t.waker) {
			continue
		}

		e.mu.Lock()
		t.done = true
		e.pending--
		e.mu.Unlock()
		e.log.Debug("executor: task done", "task", t.name, "id", t.id, "polls", t.polls)
	}
}
