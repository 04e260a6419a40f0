package framing

import (
	"context"

	"github.com/haivivi/ringbuf/pkg/ringbuf"
)

// Writer encodes messages into a byte ring.
//
// The poll methods follow the usual sink shape: PollReady until Ready, then
// StartSend, and PollFlush or PollClose to push the last frame out. Frames
// larger than the free space are written across several polls.
type Writer[M any] struct {
	p     *ringbuf.Producer[byte]
	codec Codec[M]

	// encoded bytes not yet accepted by the ring
	pending []byte
}

// NewWriter returns a Writer that encodes with codec into p.
func NewWriter[M any](p *ringbuf.Producer[byte], codec Codec[M]) *Writer[M] {
	return &Writer[M]{p: p, codec: codec}
}

// PollReady reports Ready once every previously started frame has been
// handed to the ring.
func (fw *Writer[M]) PollReady(w ringbuf.Waker) (ringbuf.Status, error) {
	for len(fw.pending) > 0 {
		n, st, err := fw.p.PollWrite(w, fw.pending)
		if err != nil {
			return st, err
		}
		if st == ringbuf.Pending {
			return st, nil
		}
		fw.pending = fw.pending[n:]
	}
	fw.pending = fw.pending[:0]
	return ringbuf.Ready, nil
}

// StartSend encodes m behind any frame that is still pending.
func (fw *Writer[M]) StartSend(m M) error {
	if fw.p.IsClosed() {
		return ringbuf.ErrClosedForWriting
	}
	buf, err := fw.codec.Encode(fw.pending, m)
	if err != nil {
		return err
	}
	fw.pending = buf
	return nil
}

// PollFlush writes out pending frames.
func (fw *Writer[M]) PollFlush(w ringbuf.Waker) (ringbuf.Status, error) {
	return fw.PollReady(w)
}

// PollClose flushes pending frames and then closes the ring.
func (fw *Writer[M]) PollClose(w ringbuf.Waker) (ringbuf.Status, error) {
	if fw.p.IsClosed() {
		return ringbuf.Ready, nil
	}
	st, err := fw.PollReady(w)
	if err != nil || st == ringbuf.Pending {
		return st, err
	}
	return fw.p.PollClose(w), nil
}

// Send encodes m and blocks until the whole frame is in the ring.
func (fw *Writer[M]) Send(ctx context.Context, m M) error {
	if err := fw.StartSend(m); err != nil {
		return err
	}
	return fw.Flush(ctx)
}

// Flush blocks until all pending frames are in the ring.
func (fw *Writer[M]) Flush(ctx context.Context) error {
	n, err := fw.p.WriteContext(ctx, fw.pending)
	fw.pending = fw.pending[n:]
	if len(fw.pending) == 0 {
		fw.pending = fw.pending[:0]
	}
	return err
}

// Close flushes pending frames and closes the ring.
func (fw *Writer[M]) Close() error {
	if fw.p.IsClosed() {
		return nil
	}
	if err := fw.Flush(context.Background()); err != nil {
		return err
	}
	return fw.p.Close()
}
