package mux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tandemwire/tandem/pkg/wire"
)

// Request is one inbound request as seen by a handler: the message kind
// it was sent as, plus its raw payload. The typed layer (Message.Bind)
// decodes Payload before application code sees it; middleware sees the
// Request as-is.
type Request struct {
	ID      wire.ID
	Name    string
	Payload []byte
}

// HandlerFunc processes one inbound request and returns the reply
// payload. Returning an error fails the remote caller's call with the
// error's text.
type HandlerFunc func(ctx context.Context, req *Request) ([]byte, error)

// Middleware wraps a HandlerFunc, observing or altering every inbound
// request that reaches a bound handler.
type Middleware func(HandlerFunc) HandlerFunc

// Peer multiplexes typed request/reply calls over one Transport. It
// owns the transport's read side: after Start, inbound messages are
// classified as responses (resolved against pending calls) or requests
// (dispatched to bound handlers), each handled independently so a slow
// handler never delays unrelated frames.
//
// A Peer passes through two states: active from Start, terminated once,
// when the transport closes or fails. Termination fails every
// outstanding call, rejects new ones, and resolves Wait.
type Peer struct {
	transport Transport
	catalog   *Catalog
	pending   *pending
	logger    *slog.Logger
	hook      func(error)
	mw        []Middleware
	inflight  chan struct{} // nil means unbounded

	handlersMu sync.RWMutex
	handlers   map[wire.ID]HandlerFunc

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	done      chan struct{} // closed on termination
	termErr   error         // valid once done is closed

	localClose bool
	closeMu    sync.Mutex

	wg sync.WaitGroup // in-flight request handlers
}

// NewPeer binds a Peer to an established transport and a catalog. The
// dispatch loop does not run until Start; bind handlers first.
func NewPeer(t Transport, c *Catalog, opts ...Option) *Peer {
	ctx, cancel := context.WithCancel(context.Background())

	p := &Peer{
		transport: t,
		catalog:   c,
		pending:   newPending(),
		logger:    slog.Default(),
		hook:      func(error) {},
		handlers:  make(map[wire.ID]HandlerFunc),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.logger = p.logger.With("peer_id", uuid.NewString()[:8])
	return p
}

// Handle binds fn as the handler for inbound requests of kind id,
// wrapped in the Peer's middleware. Most callers use Message.Bind
// instead, which layers the codecs on top. Binding after Start is
// allowed; rebinding replaces the previous handler.
func (p *Peer) Handle(id wire.ID, fn HandlerFunc) {
	for i := len(p.mw) - 1; i >= 0; i-- {
		fn = p.mw[i](fn)
	}

	p.handlersMu.Lock()
	p.handlers[id] = fn
	p.handlersMu.Unlock()
}

// Start launches the dispatch loop. It returns immediately; use Wait to
// observe termination.
func (p *Peer) Start() {
	go p.readLoop()
}

// Wait blocks until the Peer terminates. It returns nil when the
// transport ended cleanly (local Close or the counterpart finishing its
// stream) and the transport's error otherwise. In-flight handlers are
// drained before Wait returns.
func (p *Peer) Wait() error {
	<-p.done
	p.wg.Wait()
	return p.termErr
}

// Close terminates the Peer: outstanding calls fail with ErrPeerClosed,
// the transport is closed, and the dispatch loop stops. Idempotent.
func (p *Peer) Close() error {
	p.closeMu.Lock()
	p.localClose = true
	p.closeMu.Unlock()

	p.terminate(nil)
	return nil
}

// Call performs one correlated round-trip: allocate a token, send the
// request frame, suspend until the matching response resolves it. The
// reply payload comes back exactly as the counterpart sent it.
//
// If ctx ends first, the pending call is withdrawn and ctx's error
// returned; a response arriving afterwards is reported to the error
// hook as ErrInvalidToken, never delivered to a stale caller.
func (p *Peer) Call(ctx context.Context, id wire.ID, payload []byte) ([]byte, error) {
	token, waiter, err := p.pending.enqueue()
	if err != nil {
		return nil, err
	}

	frame := wire.Request(id, token, payload)
	if err := p.transport.Send(ctx, frame.Encode()); err != nil {
		// Fail our own token so the entry never lingers. A failed Send
		// does not prove non-delivery: the dispatch loop may already
		// have yielded the reply, in which case the waiter holds it
		// and the caller gets it. failAll may also have beaten us;
		// either way the waiter is resolved.
		p.pending.fail(token, err)
		res := <-waiter
		return res.payload, res.err
	}

	select {
	case res := <-waiter:
		return res.payload, res.err
	case <-ctx.Done():
		p.pending.cancel(token)
		return nil, ctx.Err()
	}
}

// readLoop is the dispatch loop: one per Peer, alive from Start until
// the transport terminates.
func (p *Peer) readLoop() {
	for {
		msg, err := p.transport.Receive(p.ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				p.terminate(nil)
			} else {
				p.terminate(err)
			}
			return
		}
		p.dispatch(msg)
	}
}

// dispatch classifies one inbound message. Classification is pure and
// cheap, so it runs on the loop; request handling is handed to its own
// goroutine so the next Receive is never behind a handler.
func (p *Peer) dispatch(msg []byte) {
	id, _, err := wire.DecodeHeader(msg)
	if err != nil {
		p.report(fmt.Errorf("mux: inbound frame: %w", err))
		return
	}

	// Unknown identifier: the remaining bytes cannot be trusted to
	// follow the envelope shape, so the frame is dropped before the
	// token is parsed. Not repliable.
	if !p.catalog.Contains(id) {
		p.report(&UnknownMessageError{Raw: byte(id)})
		return
	}

	frame, err := wire.DecodeFrame(msg)
	if err != nil {
		p.report(fmt.Errorf("mux: inbound frame: %w", err))
		return
	}

	if frame.IsResponse() {
		p.resolveResponse(frame)
		return
	}

	// Inbound request: one goroutine per frame. The limiter, when
	// configured, holds the loop here; responses above always get
	// through so a saturated handler pool cannot deadlock two peers
	// calling each other.
	if p.inflight != nil {
		select {
		case p.inflight <- struct{}{}:
		case <-p.done:
			return
		}
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if p.inflight != nil {
			defer func() { <-p.inflight }()
		}
		p.serveRequest(frame)
	}()
}

// resolveResponse settles the pending call a response frame answers.
// Never blocks: waiter channels are buffered.
func (p *Peer) resolveResponse(frame *wire.Frame) {
	var err error
	if frame.IsError() {
		err = p.pending.fail(frame.Token, &CallError{Message: string(frame.Payload)})
	} else {
		err = p.pending.yield(frame.Token, frame.Payload)
	}

	if err != nil {
		p.logger.Warn("response for unknown token", "token", uint64(frame.Token), "message", p.catalog.Name(frame.ID))
		p.hook(fmt.Errorf("mux: response for token %d: %w", uint64(frame.Token), err))
	}
}

// serveRequest runs the bound handler for one inbound request and sends
// the response frame, error-flagged if the handler failed.
func (p *Peer) serveRequest(frame *wire.Frame) {
	name := p.catalog.Name(frame.ID)

	p.handlersMu.RLock()
	handler, ok := p.handlers[frame.ID]
	p.handlersMu.RUnlock()

	var reply *wire.Frame
	if !ok {
		reply = wire.ErrorResponse(frame.ID, frame.Token, ErrNoHandler.Error())
	} else {
		req := &Request{ID: frame.ID, Name: name, Payload: frame.Payload}
		result, err := handler(p.ctx, req)
		if err != nil {
			p.logger.Debug("handler failed", "message", name, "error", err)
			reply = wire.ErrorResponse(frame.ID, frame.Token, err.Error())
		} else {
			reply = wire.Response(frame.ID, frame.Token, result)
		}
	}

	// A failed response send has nowhere further to go: the caller on
	// the other side learns nothing until the transport itself fails.
	if err := p.transport.Send(p.ctx, reply.Encode()); err != nil {
		p.report(fmt.Errorf("mux: send response for %q token %d: %w", name, uint64(frame.Token), err))
	}
}

// terminate moves the Peer to its terminal state exactly once. cause is
// nil for clean closure (local Close, counterpart end-of-stream) and
// the transport error otherwise.
func (p *Peer) terminate(cause error) {
	p.closeOnce.Do(func() {
		p.closeMu.Lock()
		local := p.localClose
		p.closeMu.Unlock()

		p.termErr = cause

		failure := cause
		if failure == nil {
			failure = ErrPeerClosed
		}
		p.pending.failAll(failure)

		p.cancel()
		if err := p.transport.Close(); err != nil {
			p.logger.Debug("transport close", "error", err)
		}
		close(p.done)

		if cause != nil {
			p.logger.Error("peer terminated", "error", cause)
		} else {
			p.logger.Info("peer closed", "local", local)
		}
	})
}

// report delivers an uncorrelated error to the hook and the log. These
// are the failures no caller is waiting on: framing errors, unknown
// identifiers, responses without a pending call, failed response sends.
func (p *Peer) report(err error) {
	p.logger.Error("protocol error", "error", err)
	p.hook(err)
}
