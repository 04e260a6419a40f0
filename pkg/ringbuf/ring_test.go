package ringbuf

import (
	"bytes"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"testing"
)

type countWaker struct {
	n atomic.Int32
}

func (w *countWaker) Wake() { w.n.Add(1) }

func (w *countWaker) count() int { return int(w.n.Load()) }

func checkState[T any](t *testing.T, h handle[T], wantLen int) {
	t.Helper()
	c := h.Cap()
	if got := h.Len(); got != wantLen {
		t.Errorf("Len() = %d, want %d", got, wantLen)
	}
	if got := h.Remaining(); got != c-wantLen {
		t.Errorf("Remaining() = %d, want %d", got, c-wantLen)
	}
	if got := h.IsEmpty(); got != (wantLen == 0) {
		t.Errorf("IsEmpty() = %v, want %v", got, wantLen == 0)
	}
	if got := h.IsFull(); got != (wantLen == c) {
		t.Errorf("IsFull() = %v, want %v", got, wantLen == c)
	}
}

func TestRingBuffer_Scenario(t *testing.T) {
	w, r := New[byte](2)

	if err := w.Push('a'); err != nil {
		t.Fatalf("Push(a) error: %v", err)
	}
	if err := w.Push('b'); err != nil {
		t.Fatalf("Push(b) error: %v", err)
	}
	checkState(t, r.handle, 2)

	// read 1
	if v, st := r.PollNext(nil); st != Ready || v != 'a' {
		t.Fatalf("PollNext = (%q, %v), want ('a', ready)", v, st)
	}
	checkState(t, r.handle, 1)

	// read 2
	if v, st := r.PollNext(nil); st != Ready || v != 'b' {
		t.Fatalf("PollNext = (%q, %v), want ('b', ready)", v, st)
	}
	checkState(t, r.handle, 0)
	if s := r.Stats(); s.ReaderWaiting || s.WriterWaiting {
		t.Fatalf("unexpected waiters: %+v", s)
	}

	// read 3 suspends and registers the reader
	cw := &countWaker{}
	if _, st := r.PollNext(cw); st != Pending {
		t.Fatalf("PollNext on empty ring = %v, want pending", st)
	}
	checkState(t, r.handle, 0)
	if s := r.Stats(); !s.ReaderWaiting || s.WriterWaiting {
		t.Fatalf("Stats() = %+v, want reader waiting only", s)
	}

	// a write wakes the reader exactly once and clears the slot
	n, err := w.Write([]byte{'c'})
	if err != nil || n != 1 {
		t.Fatalf("Write = (%d, %v), want (1, nil)", n, err)
	}
	checkState(t, r.handle, 1)
	if cw.count() != 1 {
		t.Fatalf("reader woken %d times, want 1", cw.count())
	}
	if r.Stats().ReaderWaiting {
		t.Fatal("reader waker still registered after wake")
	}

	if v, st := r.PollNext(cw); st != Ready || v != 'c' {
		t.Fatalf("PollNext = (%q, %v), want ('c', ready)", v, st)
	}
	checkState(t, r.handle, 0)
	if cw.count() != 1 {
		t.Fatalf("reader woken %d times, want 1", cw.count())
	}
}

func TestRingBuffer_FullEmptyBoundary(t *testing.T) {
	for c := 1; c <= 8; c++ {
		w, r := New[int](c)
		for i := range c {
			if err := w.Push(i); err != nil {
				t.Fatalf("cap=%d: Push(%d) error: %v", c, i, err)
			}
		}
		if !w.IsFull() {
			t.Fatalf("cap=%d: IsFull() = false after %d pushes", c, c)
		}
		if err := w.Push(c); err != ErrFull {
			t.Fatalf("cap=%d: Push on full ring = %v, want ErrFull", c, err)
		}
		cw := &countWaker{}
		if st, err := w.PollSend(cw, c); st != Pending || err != nil {
			t.Fatalf("cap=%d: PollSend on full ring = (%v, %v), want pending", c, st, err)
		}
		for i := range c {
			v, ok := r.Pop()
			if !ok || v != i {
				t.Fatalf("cap=%d: Pop = (%d, %v), want (%d, true)", c, v, ok, i)
			}
		}
		if !r.IsEmpty() {
			t.Fatalf("cap=%d: IsEmpty() = false after draining", c)
		}
		if _, ok := r.Pop(); ok {
			t.Fatalf("cap=%d: Pop on empty ring succeeded", c)
		}
		if cw.count() != 1 {
			t.Fatalf("cap=%d: writer woken %d times, want 1", c, cw.count())
		}
	}
}

func TestRingBuffer_RoundTrip(t *testing.T) {
	for _, c := range []int{1, 2, 3, 7, 16} {
		w, r := New[string](c)
		want := make([]string, c)
		for i := range want {
			want[i] = string(rune('a' + i))
			if err := w.Push(want[i]); err != nil {
				t.Fatalf("Push error: %v", err)
			}
		}
		var got []string
		for range c {
			v, ok := r.Pop()
			if !ok {
				t.Fatalf("cap=%d: Pop returned nothing", c)
			}
			got = append(got, v)
		}
		if !slices.Equal(got, want) {
			t.Fatalf("cap=%d: got %v, want %v", c, got, want)
		}
	}
}

func TestRingBuffer_Occupancy(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for c := 1; c <= 12; c++ {
		w, r := New[int](c)
		var pushed, popped, next, expect int
		for range 2000 {
			if rng.IntN(2) == 0 {
				if err := w.Push(next); err == nil {
					pushed++
					next++
				} else if err != ErrFull {
					t.Fatalf("Push error: %v", err)
				}
			} else {
				if v, ok := r.Pop(); ok {
					if v != expect {
						t.Fatalf("cap=%d: Pop = %d, want %d", c, v, expect)
					}
					popped++
					expect++
				}
			}
			n := r.Len()
			if n != pushed-popped {
				t.Fatalf("cap=%d: Len() = %d, want %d", c, n, pushed-popped)
			}
			if n < 0 || n > c {
				t.Fatalf("cap=%d: Len() = %d out of range", c, n)
			}
		}
	}
}

func TestRingBuffer_BulkWrap(t *testing.T) {
	w, r := New[byte](5)

	n, err := w.PushSlice([]byte{1, 2, 3, 4})
	if n != 4 || err != nil {
		t.Fatalf("PushSlice = (%d, %v), want (4, nil)", n, err)
	}
	buf := make([]byte, 3)
	if n := r.PopSlice(buf); n != 3 || !bytes.Equal(buf, []byte{1, 2, 3}) {
		t.Fatalf("PopSlice = %d %v", n, buf)
	}

	// head=3, tail=4: the free region wraps around the end of storage
	n, err = w.PushSlice([]byte{5, 6, 7, 8, 9, 10})
	if n != 4 || err != nil {
		t.Fatalf("PushSlice = (%d, %v), want (4, nil)", n, err)
	}
	checkState(t, w.handle, 5)

	buf = make([]byte, 8)
	n = r.PopSlice(buf)
	if n != 5 || !bytes.Equal(buf[:n], []byte{4, 5, 6, 7, 8}) {
		t.Fatalf("PopSlice = %d %v, want [4 5 6 7 8]", n, buf[:n])
	}
	if n := r.PopSlice(buf); n != 0 {
		t.Fatalf("PopSlice on empty ring = %d, want 0", n)
	}
	if n, err := w.PushSlice(nil); n != 0 || err != nil {
		t.Fatalf("PushSlice(nil) = (%d, %v)", n, err)
	}
}

func TestRingBuffer_PopReleasesSlots(t *testing.T) {
	w, r := New[*int](2)
	v := 42
	w.Push(&v)
	w.Push(&v)
	r.Pop()
	r.PopSlice(make([]*int, 1))
	for i, p := range r.r.buf {
		if p != nil {
			t.Fatalf("slot %d still holds a value after pop", i)
		}
	}
}

func TestNew_InvalidCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New(0) did not panic")
		}
	}()
	New[int](0)
}
