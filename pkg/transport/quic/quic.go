package quic

import (
	"log/slog"
	"time"
)

// Defaults applied when no option overrides them.
const (
	DefaultMaxMessageSize  = 4 * 1024 * 1024
	DefaultIdleTimeout     = 10 * time.Minute
	DefaultKeepAlivePeriod = 30 * time.Second
)

type config struct {
	maxMessageSize  uint32
	idleTimeout     time.Duration
	keepAlivePeriod time.Duration
	pinnedPeer      string
	logger          *slog.Logger
}

func defaultConfig() config {
	return config{
		maxMessageSize:  DefaultMaxMessageSize,
		idleTimeout:     DefaultIdleTimeout,
		keepAlivePeriod: DefaultKeepAlivePeriod,
		logger:          slog.Default(),
	}
}

// Option configures Dial and Listen.
type Option func(*config)

// WithMaxMessageSize caps the length prefix of one message. Anything
// larger fails the transport before a byte of payload is read.
func WithMaxMessageSize(n uint32) Option {
	return func(c *config) {
		if n > 0 {
			c.maxMessageSize = n
		}
	}
}

// WithIdleTimeout sets the QUIC idle timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.idleTimeout = d
		}
	}
}

// WithKeepAlivePeriod sets the QUIC keep-alive ping period.
func WithKeepAlivePeriod(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.keepAlivePeriod = d
		}
	}
}

// WithPinnedPeer accepts only the counterpart whose identity hashes to
// fp; any other certificate fails the handshake. Without it, any
// certificate is accepted and the caller checks RemoteFingerprint
// after the fact.
func WithPinnedPeer(fp string) Option {
	return func(c *config) {
		c.pinnedPeer = fp
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
