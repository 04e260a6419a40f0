// Package framing splits the byte stream of a ringbuf ring into messages.
//
// A Codec turns messages into bytes and back. Writer encodes messages into a
// ringbuf.Producer[byte]; Reader decodes them from a ringbuf.Consumer[byte].
// Both expose the same poll contract as the ring itself plus blocking
// helpers, so they can be driven by an executor or used from goroutines.
package framing

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrFrameTooLarge is returned when a frame exceeds the codec's limit.
	ErrFrameTooLarge = errors.New("framing: frame too large")

	// ErrTruncatedFrame is returned when the stream ends inside a frame.
	ErrTruncatedFrame = errors.New("framing: stream ended inside a frame")
)

// Codec encodes and decodes messages of type M.
//
// Decode returns n == 0 and a nil error when src does not yet hold a complete
// frame. Otherwise n is the number of bytes consumed.
type Codec[M any] interface {
	Encode(dst []byte, m M) ([]byte, error)
	Decode(src []byte) (m M, n int, err error)
}

// LinesCodec frames strings as newline-terminated lines. Encode appends the
// newline if the message lacks one; Decode strips it.
type LinesCodec struct {
	// MaxLineLength bounds an undelimited line. Zero means no limit.
	MaxLineLength int
}

func (c LinesCodec) Encode(dst []byte, m string) ([]byte, error) {
	dst = append(dst, m...)
	if len(m) == 0 || m[len(m)-1] != '\n' {
		dst = append(dst, '\n')
	}
	return dst, nil
}

func (c LinesCodec) Decode(src []byte) (string, int, error) {
	i := bytes.IndexByte(src, '\n')
	if i < 0 {
		if c.MaxLineLength > 0 && len(src) > c.MaxLineLength {
			return "", 0, fmt.Errorf("%w: line exceeds %d bytes", ErrFrameTooLarge, c.MaxLineLength)
		}
		return "", 0, nil
	}
	line := src[:i]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	if c.MaxLineLength > 0 && len(line) > c.MaxLineLength {
		return "", 0, fmt.Errorf("%w: line exceeds %d bytes", ErrFrameTooLarge, c.MaxLineLength)
	}
	return string(line), i + 1, nil
}

// DefaultMaxFrameSize is the frame limit MsgpackCodec applies when
// MaxFrameSize is zero.
const DefaultMaxFrameSize = 1 << 20

// MsgpackCodec frames values as a uvarint length followed by a msgpack body.
type MsgpackCodec[M any] struct {
	MaxFrameSize int
}

func (c MsgpackCodec[M]) limit() int {
	if c.MaxFrameSize > 0 {
		return c.MaxFrameSize
	}
	return DefaultMaxFrameSize
}

func (c MsgpackCodec[M]) Encode(dst []byte, m M) ([]byte, error) {
	body, err := msgpack.Marshal(m)
	if err != nil {
		return dst, fmt.Errorf("framing: marshal msgpack: %w", err)
	}
	if len(body) > c.limit() {
		return dst, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(body), c.limit())
	}
	dst = binary.AppendUvarint(dst, uint64(len(body)))
	return append(dst, body...), nil
}

func (c MsgpackCodec[M]) Decode(src []byte) (m M, n int, err error) {
	size, k := binary.Uvarint(src)
	switch {
	case k == 0:
		return m, 0, nil
	case k < 0 || size > uint64(c.limit()):
		return m, 0, fmt.Errorf("%w: bad length prefix", ErrFrameTooLarge)
	}
	end := k + int(size)
	if len(src) < end {
		return m, 0, nil
	}
	if err := msgpack.Unmarshal(src[k:end], &m); err != nil {
		return m, 0, fmt.Errorf("framing: unmarshal msgpack: %w", err)
	}
	return m, end, nil
}
