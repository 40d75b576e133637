// Package tandem provides the public API for the tandem multiplexing
// library.
//
// This is the recommended import for most applications:
//
//	import "github.com/tandemwire/tandem"
//
// Usage:
//
//	cat := tandem.NewCatalog()
//	ping := tandem.Register(cat, 0x01, "ping", codec.Unit, codec.Unit)
//
//	peer := tandem.NewPeer(transport, cat)
//	ping.Bind(peer, func(ctx context.Context, _ struct{}) (struct{}, error) {
//		return struct{}{}, nil
//	})
//	peer.Start()
//
//	reply, err := ping.Call(ctx, peer, struct{}{})
//
// The full surface lives in the subpackages: pkg/mux for the peer and
// catalog, pkg/codec for payload codecs, pkg/wire for the envelope,
// pkg/transport/ws and pkg/transport/quic for ready-made transports,
// and pkg/middleware for observability interceptors.
package tandem

import (
	"github.com/tandemwire/tandem/pkg/codec"
	"github.com/tandemwire/tandem/pkg/mux"
	"github.com/tandemwire/tandem/pkg/wire"
)

// Core types re-exported from pkg/mux.
type (
	// Peer multiplexes typed request/reply calls over one Transport.
	Peer = mux.Peer

	// Catalog is the closed set of message kinds two peers agree on.
	Catalog = mux.Catalog

	// Transport is the message-framed duplex link a Peer runs over.
	Transport = mux.Transport

	// Request is one inbound request as seen by handlers and
	// middleware.
	Request = mux.Request

	// HandlerFunc processes one inbound request.
	HandlerFunc = mux.HandlerFunc

	// Middleware wraps a HandlerFunc.
	Middleware = mux.Middleware

	// Option configures a Peer at construction.
	Option = mux.Option

	// CallError is a remote handler's failure as seen by the local
	// caller.
	CallError = mux.CallError
)

// Wire-level types re-exported from pkg/wire.
type (
	// ID identifies a message kind, one byte on the wire.
	ID = wire.ID

	// Token correlates a response with its request.
	Token = wire.Token
)

// Sentinel errors re-exported from pkg/mux.
var (
	ErrPeerClosed   = mux.ErrPeerClosed
	ErrInvalidToken = mux.ErrInvalidToken
)

// NewCatalog returns an empty message catalog.
func NewCatalog() *Catalog {
	return mux.NewCatalog()
}

// NewPeer binds a Peer to an established transport and a catalog.
func NewPeer(t Transport, c *Catalog, opts ...Option) *Peer {
	return mux.NewPeer(t, c, opts...)
}

// Register adds a message kind to the catalog and returns its typed
// call site.
func Register[Req, Rep any](c *Catalog, id ID, name string, req codec.Codec[Req], rep codec.Codec[Rep]) mux.Message[Req, Rep] {
	return mux.Register(c, id, name, req, rep)
}

// Peer options re-exported from pkg/mux.
var (
	WithLogger      = mux.WithLogger
	WithErrorHook   = mux.WithErrorHook
	WithMaxInflight = mux.WithMaxInflight
	WithMiddleware  = mux.WithMiddleware
)
