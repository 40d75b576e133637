package mux

import (
	"context"
	"fmt"

	"github.com/tandemwire/tandem/pkg/codec"
	"github.com/tandemwire/tandem/pkg/wire"
)

// Catalog is the closed set of message kinds two peers agree on. Both
// sides must register the same identifiers against the same codecs; the
// catalog is how a receiver decides whether an inbound identifier byte
// is meaningful at all.
//
// Registration happens at setup time, before the catalog is handed to a
// Peer. A Catalog is immutable afterwards and safe for concurrent
// reads.
type Catalog struct {
	names map[wire.ID]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{names: make(map[wire.ID]string)}
}

// Contains reports whether id is a registered message kind.
func (c *Catalog) Contains(id wire.ID) bool {
	_, ok := c.names[id]
	return ok
}

// Name returns the registered name for id, or "" if unknown. Names are
// for logs, metrics, and traces; only the identifier byte travels on
// the wire.
func (c *Catalog) Name(id wire.ID) string {
	return c.names[id]
}

// Len returns the number of registered message kinds.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Register adds a message kind to the catalog and returns its typed
// call site. Registering the same identifier twice is a programming
// error and panics, like a duplicate http.ServeMux pattern.
func Register[Req, Rep any](c *Catalog, id wire.ID, name string, req codec.Codec[Req], rep codec.Codec[Rep]) Message[Req, Rep] {
	if prev, ok := c.names[id]; ok {
		panic(fmt.Sprintf("mux: identifier %#02x already registered as %q", uint8(id), prev))
	}
	c.names[id] = name

	return Message[Req, Rep]{id: id, name: name, req: req, rep: rep}
}

// Message is the typed call site for one registered message kind: the
// identifier plus the request and reply codecs. The zero value is not
// usable; obtain one from Register.
type Message[Req, Rep any] struct {
	id   wire.ID
	name string
	req  codec.Codec[Req]
	rep  codec.Codec[Rep]
}

// ID returns the message's wire identifier.
func (m Message[Req, Rep]) ID() wire.ID { return m.id }

// Name returns the message's registered name.
func (m Message[Req, Rep]) Name() string { return m.name }

// Call encodes req, performs a correlated round-trip on p, and decodes
// the reply. Encode failures, call failures (transport errors, the
// remote handler's CallError), and decode failures all propagate to the
// caller unmodified.
func (m Message[Req, Rep]) Call(ctx context.Context, p *Peer, req Req) (Rep, error) {
	var zero Rep

	payload, err := m.req.Encode(req)
	if err != nil {
		return zero, err
	}

	reply, err := p.Call(ctx, m.id, payload)
	if err != nil {
		return zero, err
	}

	return m.rep.Decode(reply)
}

// Bind registers fn as p's handler for this message kind, wrapping it
// with the request and reply codecs. A request whose payload does not
// decode fails the call on the remote side with the decode error's
// text.
func (m Message[Req, Rep]) Bind(p *Peer, fn func(context.Context, Req) (Rep, error)) {
	p.Handle(m.id, func(ctx context.Context, r *Request) ([]byte, error) {
		req, err := m.req.Decode(r.Payload)
		if err != nil {
			return nil, err
		}

		rep, err := fn(ctx, req)
		if err != nil {
			return nil, err
		}

		return m.rep.Encode(rep)
	})
}
