package ringbuf

// Waker is the handle a suspended poll leaves behind. Wake signals the owner
// that the operation should be polled again. A Waker stored in a ring is
// removed before it is invoked, so each registration is woken at most once.
type Waker interface {
	Wake()
}

// WakerFunc adapts a plain function to the Waker interface.
type WakerFunc func()

// Wake calls f.
func (f WakerFunc) Wake() { f() }

// Status is the outcome of a poll.
type Status int

const (
	// Pending means no progress was possible; the Waker passed to the poll
	// has been registered and will be woken when the other side moves.
	Pending Status = iota
	// Ready means the poll completed.
	Ready
	// Done means the ring is closed and drained. It is terminal.
	Done
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

func wake(w Waker) {
	if w != nil {
		w.Wake()
	}
}

// chanWaker is the Waker used by the blocking adapters. Wake never blocks and
// coalesces, so a waker whose owner stopped listening is harmless.
type chanWaker struct {
	ch chan struct{}
}

func newChanWaker() *chanWaker {
	return &chanWaker{ch: make(chan struct{}, 1)}
}

func (cw *chanWaker) Wake() {
	select {
	case cw.ch <- struct{}{}:
	default:
	}
}
