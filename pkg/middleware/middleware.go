// Package middleware provides observability interceptors for inbound
// requests: Prometheus metrics, OpenTelemetry traces, and panic
// recovery. Install them with mux.WithMiddleware; they wrap every
// handler bound on the peer.
package middleware

import "github.com/tandemwire/tandem/pkg/mux"

// Chain composes middlewares into one, first entry outermost.
func Chain(mws ...mux.Middleware) mux.Middleware {
	return func(next mux.HandlerFunc) mux.HandlerFunc {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
