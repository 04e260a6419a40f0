// Package ringbuf provides a fixed-capacity, single-producer/single-consumer
// ring buffer with a poll-based suspension protocol.
//
// New splits one shared ring into two handles:
//
//   - Producer: Push, PushSlice, PollSend, PollWrite, Write and Close.
//   - Consumer: Pop, PopSlice, PollNext, PollRead, Next, Read and All.
//
// The Poll* methods never block. When they cannot make progress they store
// the caller's Waker in the ring and report Pending. The opposite side takes
// that Waker out of the ring and calls Wake exactly once as soon as it makes
// progress: a successful push wakes a pending reader, a successful pop wakes
// a pending writer, and Close wakes a pending reader so it can observe the end
// of the stream. Wakers are invoked after the ring's lock has been released,
// so a Waker may call back into the ring.
//
// Close is a half-close: elements that were already pushed stay readable.
// Once the ring is closed and drained, PollNext and PollRead report Done
// forever.
//
// The blocking methods (Next, Read, Write, Send, All) are thin loops over the
// Poll* methods with a channel-backed Waker, so the ring can be used directly
// from goroutines:
//
//	w, r := ringbuf.NewBytes(4096)
//
//	go func() {
//		defer w.Close()
//		w.Write([]byte("hello"))
//	}()
//
//	data, err := io.ReadAll(r)
//
// Exactly one goroutine (or task) may use the Producer and exactly one may use
// the Consumer at a time.
package ringbuf
