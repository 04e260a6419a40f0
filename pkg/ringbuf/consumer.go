package ringbuf

import (
	"context"
	"io"
	"iter"
)

// Consumer is the read end of a ring.
type Consumer[T any] struct {
	handle[T]

	waiter *chanWaker
}

// Pop removes the oldest element without blocking. ok is false when the ring
// is empty. A successful pop wakes a pending writer.
func (c *Consumer[T]) Pop() (v T, ok bool) {
	v, ok, w := c.r.pop()
	wake(w)
	return v, ok
}

// PopSlice moves up to len(s) of the oldest elements into s and returns the
// count, which is 0 when the ring is empty.
func (c *Consumer[T]) PopSlice(s []T) int {
	n, w := c.r.popSlice(s)
	wake(w)
	return n
}

// PollNext returns the next element with Ready, or Done once the ring is
// closed and drained. Otherwise it registers w as the pending reader,
// replacing any earlier registration, and returns Pending.
func (c *Consumer[T]) PollNext(w Waker) (T, Status) {
	v, st, ww := c.r.pollNext(w)
	wake(ww)
	return v, st
}

// PollRead is the bulk form of PollNext: it moves up to len(s) elements into
// s. An empty s is Ready with 0.
func (c *Consumer[T]) PollRead(w Waker, s []T) (int, Status) {
	n, st, ww := c.r.pollRead(w, s)
	wake(ww)
	return n, st
}

// Next returns the next element, blocking while the ring is empty. It
// returns ErrIteratorDone once the ring is closed and drained, or ctx.Err().
func (c *Consumer[T]) Next(ctx context.Context) (T, error) {
	for {
		v, st := c.PollNext(c.waiter)
		switch st {
		case Ready:
			return v, nil
		case Done:
			return v, ErrIteratorDone
		}
		if err := c.wait(ctx); err != nil {
			var zero T
			return zero, err
		}
	}
}

// Read reads into s, blocking until at least one element is available. It
// returns io.EOF once the ring is closed and drained. With T = byte this
// makes the Consumer an io.Reader.
func (c *Consumer[T]) Read(s []T) (int, error) {
	return c.ReadContext(context.Background(), s)
}

// ReadContext is Read with cancellation.
func (c *Consumer[T]) ReadContext(ctx context.Context, s []T) (int, error) {
	for {
		n, st := c.PollRead(c.waiter, s)
		switch st {
		case Ready:
			return n, nil
		case Done:
			return 0, io.EOF
		}
		if err := c.wait(ctx); err != nil {
			return 0, err
		}
	}
}

// All returns an iterator over the remaining elements. It stops when the ring
// is closed and drained, when ctx is done, or when the loop breaks. The
// sequence is not restartable: a second range sees only what is left.
func (c *Consumer[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, err := c.Next(ctx)
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

func (c *Consumer[T]) wait(ctx context.Context) error {
	select {
	case <-c.waiter.ch:
		return nil
	case <-ctx.Done():
		c.r.unregisterReader(c.waiter)
		return ctx.Err()
	}
}
