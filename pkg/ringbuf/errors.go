package ringbuf

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrFull is returned by Push when no space remains. It is transient:
	// retry after the consumer pops, or use PollSend to wait for space.
	ErrFull = errors.New("ringbuf: buffer is full")

	// ErrClosedForWriting is returned by every write path once the producer
	// has been closed. It wraps io.ErrClosedPipe.
	ErrClosedForWriting = fmt.Errorf("ringbuf: write to closed buffer: %w", io.ErrClosedPipe)

	// ErrIteratorDone is returned by Consumer.Next once the ring is closed and
	// drained.
	ErrIteratorDone = errors.New("iterator done")
)
