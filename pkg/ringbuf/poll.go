package ringbuf

// The poll helpers run one state transition under the lock and hand back the
// waker of the opposite side, if any. Callers invoke it after the lock is
// released.

func (r *ring[T]) pollNext(w Waker) (v T, st Status, wk Waker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.head != r.tail {
		return r.popOneLocked(), Ready, r.takeWriteWaker()
	}
	if r.closed {
		return v, Done, nil
	}
	r.readWaker = w
	return v, Pending, nil
}

func (r *ring[T]) pollRead(w Waker, p []T) (int, Status, Waker) {
	if len(p) == 0 {
		return 0, Ready, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := r.popLocked(p); n > 0 {
		return n, Ready, r.takeWriteWaker()
	}
	if r.closed {
		return 0, Done, nil
	}
	r.readWaker = w
	return 0, Pending, nil
}

func (r *ring[T]) pollSend(w Waker, v T) (Status, Waker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Ready, nil, ErrClosedForWriting
	}
	if r.fullLocked() {
		r.writeWaker = w
		return Pending, nil, nil
	}
	r.pushOneLocked(v)
	return Ready, r.takeReadWaker(), nil
}

func (r *ring[T]) pollWrite(w Waker, p []T) (int, Status, Waker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, Ready, nil, ErrClosedForWriting
	}
	if len(p) == 0 {
		return 0, Ready, nil, nil
	}
	if r.fullLocked() {
		r.writeWaker = w
		return 0, Pending, nil, nil
	}
	n := r.pushLocked(p)
	return n, Ready, r.takeReadWaker(), nil
}

func (r *ring[T]) pollFlush() (Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Ready, ErrClosedForWriting
	}
	return Ready, nil
}
