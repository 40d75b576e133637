package mux

import "context"

// Transport is the already-established, message-framed duplex link a
// Peer multiplexes over. Implementations own framing, encryption, and
// connection establishment; the Peer only sees opaque messages.
//
// Send must be safe for concurrent use: the dispatch loop, concurrent
// handlers, and concurrent callers all write through it.
//
// Receive returns messages in the order the counterpart sent them. It
// returns io.EOF when the counterpart ends the stream cleanly and a
// descriptive error when the link fails; after either, every further
// call returns the same result.
//
// Close is idempotent and causes a blocked Receive to return.
type Transport interface {
	Send(ctx context.Context, msg []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}
