package ringbuf

import (
	"io"
	"sync"
)

var (
	_ io.Reader      = (*Consumer[byte])(nil)
	_ io.WriteCloser = (*Producer[byte])(nil)
)

// ring is the state shared by a Producer and a Consumer.
//
// head and tail only ever grow; the slot of a cursor is cursor % len(buf) and
// the occupancy is tail - head, which always stays within [0, len(buf)].
type ring[T any] struct {
	mu         sync.Mutex
	buf        []T
	head, tail int64
	closed     bool

	readWaker  Waker
	writeWaker Waker
}

func newRing[T any](capacity int) *ring[T] {
	if capacity < 1 {
		panic("ringbuf: capacity must be at least 1")
	}
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) lenLocked() int {
	return int(r.tail - r.head)
}

func (r *ring[T]) fullLocked() bool {
	return r.tail-r.head == int64(len(r.buf))
}

func (r *ring[T]) takeReadWaker() Waker {
	w := r.readWaker
	r.readWaker = nil
	return w
}

func (r *ring[T]) takeWriteWaker() Waker {
	w := r.writeWaker
	r.writeWaker = nil
	return w
}

// pushOneLocked stores v at the tail. The caller has checked for space.
func (r *ring[T]) pushOneLocked(v T) {
	r.buf[r.tail%int64(len(r.buf))] = v
	r.tail++
}

// popOneLocked removes the element at the head. The caller has checked that
// the ring is not empty.
func (r *ring[T]) popOneLocked() T {
	var zero T
	head := r.head % int64(len(r.buf))
	v := r.buf[head]
	r.buf[head] = zero
	r.head++
	return v
}

// pushLocked copies as much of p as fits into the free region, which may wrap
// around the end of buf, and returns the number of elements copied.
func (r *ring[T]) pushLocked(p []T) int {
	bufsz := int64(len(r.buf))
	avail := int(bufsz - (r.tail - r.head))
	if avail == 0 || len(p) == 0 {
		return 0
	}
	tail := int(r.tail % bufsz)

	var n int
	if tail+avail <= len(r.buf) {
		n = copy(r.buf[tail:tail+avail], p)
	} else {
		n = copy(r.buf[tail:], p)
		n += copy(r.buf[:avail-n], p[n:])
	}
	r.tail += int64(n)
	return n
}

// popLocked moves up to len(p) elements from the head into p and returns the
// number moved. Vacated slots are zeroed so the ring does not pin values.
func (r *ring[T]) popLocked(p []T) int {
	avail := int(r.tail - r.head)
	if avail == 0 || len(p) == 0 {
		return 0
	}
	head := int(r.head % int64(len(r.buf)))

	var n int
	if head+avail <= len(r.buf) {
		n = copy(p, r.buf[head:head+avail])
		clear(r.buf[head : head+n])
	} else {
		n = copy(p, r.buf[head:])
		clear(r.buf[head : head+n])
		m := copy(p[n:], r.buf[:avail-n])
		clear(r.buf[:m])
		n += m
	}
	r.head += int64(n)
	return n
}

func (r *ring[T]) push(v T) (Waker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosedForWriting
	}
	if r.fullLocked() {
		return nil, ErrFull
	}
	r.pushOneLocked(v)
	return r.takeReadWaker(), nil
}

func (r *ring[T]) pushSlice(p []T) (int, Waker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, nil, ErrClosedForWriting
	}
	n := r.pushLocked(p)
	if n == 0 {
		return 0, nil, nil
	}
	return n, r.takeReadWaker(), nil
}

func (r *ring[T]) pop() (v T, ok bool, w Waker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.head == r.tail {
		return v, false, nil
	}
	return r.popOneLocked(), true, r.takeWriteWaker()
}

func (r *ring[T]) popSlice(p []T) (int, Waker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.popLocked(p)
	if n == 0 {
		return 0, nil
	}
	return n, r.takeWriteWaker()
}

func (r *ring[T]) close() Waker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.takeReadWaker()
}

// unregisterReader clears the read slot if cw is still the registered waker.
func (r *ring[T]) unregisterReader(cw *chanWaker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.readWaker.(*chanWaker); ok && w == cw {
		r.readWaker = nil
	}
}

// unregisterWriter clears the write slot if cw is still the registered waker.
func (r *ring[T]) unregisterWriter(cw *chanWaker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.writeWaker.(*chanWaker); ok && w == cw {
		r.writeWaker = nil
	}
}

// Stats is a point-in-time snapshot of a ring.
type Stats struct {
	Capacity      int  `json:"capacity" yaml:"capacity"`
	Len           int  `json:"len" yaml:"len"`
	Remaining     int  `json:"remaining" yaml:"remaining"`
	Closed        bool `json:"closed" yaml:"closed"`
	ReaderWaiting bool `json:"reader_waiting" yaml:"reader_waiting"`
	WriterWaiting bool `json:"writer_waiting" yaml:"writer_waiting"`
}

// handle carries the introspection methods shared by Producer and Consumer.
type handle[T any] struct {
	r *ring[T]
}

// Len returns the number of elements currently buffered.
func (h handle[T]) Len() int {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	return h.r.lenLocked()
}

// Cap returns the fixed capacity of the ring.
func (h handle[T]) Cap() int {
	return len(h.r.buf)
}

// Remaining returns how many more elements fit before the ring is full.
func (h handle[T]) Remaining() int {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	return len(h.r.buf) - h.r.lenLocked()
}

// IsEmpty reports whether Len() == 0.
func (h handle[T]) IsEmpty() bool {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	return h.r.head == h.r.tail
}

// IsFull reports whether Len() == Cap().
func (h handle[T]) IsFull() bool {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	return h.r.fullLocked()
}

// IsClosed reports whether the producer has been closed.
func (h handle[T]) IsClosed() bool {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	return h.r.closed
}

// Stats returns a consistent snapshot of the ring's state.
func (h handle[T]) Stats() Stats {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	n := h.r.lenLocked()
	return Stats{
		Capacity:      len(h.r.buf),
		Len:           n,
		Remaining:     len(h.r.buf) - n,
		Closed:        h.r.closed,
		ReaderWaiting: h.r.readWaker != nil,
		WriterWaiting: h.r.writeWaker != nil,
	}
}

// New creates a ring of the given capacity and returns its two ends. The
// Producer must only be used by one goroutine or task at a time, and the same
// holds for the Consumer. New panics if capacity < 1.
func New[T any](capacity int) (*Producer[T], *Consumer[T]) {
	r := newRing[T](capacity)
	return &Producer[T]{handle: handle[T]{r}, waiter: newChanWaker()},
		&Consumer[T]{handle: handle[T]{r}, waiter: newChanWaker()}
}

// NewBytes creates a byte ring. The Producer is an io.WriteCloser and the
// Consumer an io.Reader.
func NewBytes(capacity int) (*Producer[byte], *Consumer[byte]) {
	return New[byte](capacity)
}
