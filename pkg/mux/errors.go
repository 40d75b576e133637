package mux

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Peer and the reply correlator.
var (
	// ErrInvalidToken reports a response that matches no pending call:
	// the counterpart answered a call that was never made, was already
	// resolved, or was cancelled by its caller.
	ErrInvalidToken = errors.New("mux: no pending call for token")

	// ErrPeerClosed reports that the peer terminated cleanly, by local
	// Close or by the counterpart ending the stream. Calls outstanding
	// at that moment fail with it.
	ErrPeerClosed = errors.New("mux: peer closed")

	// ErrNoHandler reports an inbound request for a catalog-known
	// identifier that no handler was bound for. Its text crosses the
	// wire as the error response.
	ErrNoHandler = errors.New("mux: no handler bound")
)

// CallError is the failure of a remote handler as seen by the local
// caller. Only the counterpart's error text survives the wire; the
// structured cause stays on the remote side.
type CallError struct {
	Message string
}

func (e *CallError) Error() string {
	return "mux: call failed: " + e.Message
}

// UnknownMessageError reports a frame whose identifier byte is not in
// the catalog. The frame is dropped before its token is parsed, so the
// error is local only and never answered on the wire.
type UnknownMessageError struct {
	Raw byte
}

func (e *UnknownMessageError) Error() string {
	return fmt.Sprintf("mux: unknown message identifier %#02x", e.Raw)
}
