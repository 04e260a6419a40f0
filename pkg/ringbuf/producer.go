package ringbuf

import "context"

// Producer is the write end of a ring.
type Producer[T any] struct {
	handle[T]

	// waiter is reused by the blocking methods; one producer means one
	// blocked writer at most.
	waiter *chanWaker
}

// Push appends v without blocking. It returns ErrFull when the ring has no
// space and ErrClosedForWriting after Close. A successful push wakes a
// pending reader.
func (p *Producer[T]) Push(v T) error {
	w, err := p.r.push(v)
	wake(w)
	return err
}

// PushSlice copies as much of s as fits and returns the count. A short count
// is not an error; the caller keeps the rest. It returns ErrClosedForWriting
// after Close.
func (p *Producer[T]) PushSlice(s []T) (int, error) {
	n, w, err := p.r.pushSlice(s)
	wake(w)
	return n, err
}

// PollSend tries to append v. When the ring is full it registers w as the
// pending writer and returns Pending; w is woken by the next successful pop.
// After Close it returns Ready with ErrClosedForWriting.
func (p *Producer[T]) PollSend(w Waker, v T) (Status, error) {
	st, rw, err := p.r.pollSend(w, v)
	wake(rw)
	return st, err
}

// PollWrite copies as much of s as fits and returns Ready with the count.
// When the ring is full it registers w and returns Pending. The caller
// resubmits whatever was not written. After Close it returns Ready with
// ErrClosedForWriting regardless of free space.
func (p *Producer[T]) PollWrite(w Waker, s []T) (int, Status, error) {
	n, st, rw, err := p.r.pollWrite(w, s)
	wake(rw)
	return n, st, err
}

// PollFlush is always Ready: accepted elements are visible to the consumer
// immediately. It reports ErrClosedForWriting after Close.
func (p *Producer[T]) PollFlush(Waker) (Status, error) {
	return p.r.pollFlush()
}

// PollClose closes the ring and is always Ready.
func (p *Producer[T]) PollClose(Waker) Status {
	p.Close()
	return Ready
}

// Close marks the end of the stream. Buffered elements stay readable; once
// they are drained the consumer observes Done. A pending reader is woken, a
// pending writer is not: it learns about the close on its next write.
// Closing twice is a no-op.
func (p *Producer[T]) Close() error {
	wake(p.r.close())
	return nil
}

// Send appends v, blocking while the ring is full. It returns ctx.Err() if
// ctx is done first.
func (p *Producer[T]) Send(ctx context.Context, v T) error {
	for {
		st, err := p.PollSend(p.waiter, v)
		if err != nil {
			return err
		}
		if st == Ready {
			return nil
		}
		if err := p.wait(ctx); err != nil {
			return err
		}
	}
}

// Write writes all of s, blocking while the ring is full. With T = byte this
// makes the Producer an io.Writer.
func (p *Producer[T]) Write(s []T) (int, error) {
	return p.WriteContext(context.Background(), s)
}

// WriteContext is Write with cancellation. On error it returns the number of
// elements written before the error.
func (p *Producer[T]) WriteContext(ctx context.Context, s []T) (int, error) {
	var written int
	for len(s) > 0 {
		n, st, err := p.PollWrite(p.waiter, s)
		if err != nil {
			return written, err
		}
		if st == Pending {
			if err := p.wait(ctx); err != nil {
				return written, err
			}
			continue
		}
		written += n
		s = s[n:]
	}
	return written, nil
}

func (p *Producer[T]) wait(ctx context.Context) error {
	select {
	case <-p.waiter.ch:
		return nil
	case <-ctx.Done():
		p.r.unregisterWriter(p.waiter)
		return ctx.Err()
	}
}
