package framing

import (
	"context"
	"io"
	"iter"

	"github.com/haivivi/ringbuf/pkg/ringbuf"
)

const readChunk = 512

// Reader decodes messages from a byte ring.
type Reader[M any] struct {
	c     *ringbuf.Consumer[byte]
	codec Codec[M]

	buf   []byte
	off   int
	chunk []byte
	eof   bool

	// err is the first codec error; once set the Reader is broken.
	err error
}

// NewReader returns a Reader that decodes with codec from c.
func NewReader[M any](c *ringbuf.Consumer[byte], codec Codec[M]) *Reader[M] {
	return &Reader[M]{c: c, codec: codec, chunk: make([]byte, readChunk)}
}

// decode tries to produce one message from the buffered bytes. ok is false
// when more input is needed.
func (fr *Reader[M]) decode() (m M, ok bool, err error) {
	if fr.err != nil {
		return m, false, fr.err
	}
	if fr.off < len(fr.buf) {
		m, n, err := fr.codec.Decode(fr.buf[fr.off:])
		if err != nil {
			// The frame boundary is lost; nothing after it can be trusted.
			fr.err = err
			fr.buf, fr.off = nil, 0
			return m, false, err
		}
		if n > 0 {
			fr.off += n
			return m, true, nil
		}
	}
	if fr.eof && fr.off < len(fr.buf) {
		fr.off = len(fr.buf)
		return m, false, ErrTruncatedFrame
	}
	return m, false, nil
}

func (fr *Reader[M]) fill(p []byte) {
	if fr.off > 0 {
		fr.buf = fr.buf[:copy(fr.buf, fr.buf[fr.off:])]
		fr.off = 0
	}
	fr.buf = append(fr.buf, p...)
}

// PollNext returns the next message with Ready, Done at the end of the stream
// or Pending after registering w with the ring. A stream that ends inside a
// frame yields ErrTruncatedFrame once and Done afterwards. A codec error is
// terminal: it is returned with Ready from this and every later call, and no
// more bytes are read from the ring.
func (fr *Reader[M]) PollNext(w ringbuf.Waker) (M, ringbuf.Status, error) {
	for {
		m, ok, err := fr.decode()
		if err != nil {
			return m, ringbuf.Ready, err
		}
		if ok {
			return m, ringbuf.Ready, nil
		}
		if fr.eof {
			return m, ringbuf.Done, nil
		}
		n, st := fr.c.PollRead(w, fr.chunk)
		switch st {
		case ringbuf.Pending:
			return m, st, nil
		case ringbuf.Done:
			fr.eof = true
		default:
			fr.fill(fr.chunk[:n])
		}
	}
}

// Next blocks for the next message. It returns ringbuf.ErrIteratorDone at
// the end of the stream. Codec errors are terminal, as with PollNext.
func (fr *Reader[M]) Next(ctx context.Context) (M, error) {
	for {
		m, ok, err := fr.decode()
		if err != nil || ok {
			return m, err
		}
		if fr.eof {
			return m, ringbuf.ErrIteratorDone
		}
		n, err := fr.c.ReadContext(ctx, fr.chunk)
		if err == io.EOF {
			fr.eof = true
			continue
		}
		if err != nil {
			return m, err
		}
		fr.fill(fr.chunk[:n])
	}
}

// All iterates over the remaining messages. Decode and context errors are
// yielded once, then iteration stops.
func (fr *Reader[M]) All(ctx context.Context) iter.Seq2[M, error] {
	return func(yield func(M, error) bool) {
		for {
			m, err := fr.Next(ctx)
			if err == ringbuf.ErrIteratorDone {
				return
			}
			if !yield(m, err) || err != nil {
				return
			}
		}
	}
}
