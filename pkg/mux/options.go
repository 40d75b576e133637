package mux

import "log/slog"

// Option configures a Peer at construction.
type Option func(*Peer)

// WithLogger sets the Peer's structured logger. Defaults to
// slog.Default. The Peer scopes it with a peer_id attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Peer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithErrorHook sets the hook for errors that correlate to no call:
// framing errors, unknown identifiers, responses for unknown tokens,
// and failed response sends. The default hook ignores them (they are
// still logged). The hook may be called from the dispatch loop or from
// handler goroutines; it must not block.
func WithErrorHook(hook func(error)) Option {
	return func(p *Peer) {
		if hook != nil {
			p.hook = hook
		}
	}
}

// WithMaxInflight bounds how many inbound requests may be handled
// concurrently. At the bound, the dispatch loop stops reading new
// frames until a handler finishes; responses are always dispatched.
// Zero or negative means unbounded, the default.
func WithMaxInflight(n int) Option {
	return func(p *Peer) {
		if n > 0 {
			p.inflight = make(chan struct{}, n)
		}
	}
}

// WithMiddleware wraps every handler bound after construction, first
// middleware outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(p *Peer) {
		p.mw = append(p.mw, mw...)
	}
}
