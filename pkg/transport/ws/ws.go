// Package ws adapts a gorilla websocket connection to the mux.Transport
// contract. Every mux frame travels as one binary websocket message, so
// the protocol's message boundaries map directly onto websocket's.
//
// The adapter is strict about framing: text messages are a protocol
// violation and fail the transport. Liveness uses websocket ping/pong
// control frames, invisible to the mux layer.
package ws

import (
	"crypto/tls"
	"log/slog"
	"time"
)

// Defaults applied when no option overrides them.
const (
	DefaultReadLimit        = 4 * 1024 * 1024
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultPingInterval     = 30 * time.Second
)

type config struct {
	readLimit        int64
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
	pingInterval     time.Duration
	tlsConfig        *tls.Config
	checkOrigin      func(origin string) bool
	logger           *slog.Logger
}

func defaultConfig() config {
	return config{
		readLimit:        DefaultReadLimit,
		handshakeTimeout: DefaultHandshakeTimeout,
		writeTimeout:     DefaultWriteTimeout,
		pingInterval:     DefaultPingInterval,
		logger:           slog.Default(),
	}
}

// Option configures Dial and Upgrade.
type Option func(*config)

// WithReadLimit caps the size of one inbound message. Oversized
// messages fail the connection. Zero keeps the default.
func WithReadLimit(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.readLimit = n
		}
	}
}

// WithHandshakeTimeout bounds the websocket handshake on Dial.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.handshakeTimeout = d
		}
	}
}

// WithWriteTimeout bounds each outbound write.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// WithPingInterval sets the heartbeat period. Pings keep NATs and
// proxies from dropping idle connections; a counterpart that stops
// answering them times out the read side. Any non-positive value
// disables the heartbeat and the read deadline that rides on it.
func WithPingInterval(d time.Duration) Option {
	return func(c *config) {
		c.pingInterval = d
	}
}

// WithTLSConfig sets the client TLS configuration for wss dials.
func WithTLSConfig(tc *tls.Config) Option {
	return func(c *config) {
		c.tlsConfig = tc
	}
}

// WithCheckOrigin sets the origin check applied by Upgrade. The default
// is gorilla's same-origin policy.
func WithCheckOrigin(fn func(origin string) bool) Option {
	return func(c *config) {
		c.checkOrigin = fn
	}
}

// WithLogger sets the connection logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
