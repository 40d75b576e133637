package quic

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/quic-go/quic-go"
)

// lenPrefixSize is the fixed big-endian length prefix ahead of every
// message on the stream.
const lenPrefixSize = 4

// ErrMessageTooLarge reports a length prefix above the configured cap.
var ErrMessageTooLarge = errors.New("quic: message exceeds size limit")

// Conn is one QUIC connection exposed as a mux.Transport: a single
// bidirectional stream carrying length-prefixed messages in order.
type Conn struct {
	qc     quic.Connection
	stream quic.Stream
	cfg    config

	writeMu sync.Mutex

	closeOnce sync.Once
}

// Send writes one message as a 4-byte big-endian length followed by the
// payload. Safe for concurrent use; the mutex keeps prefix and payload
// contiguous on the stream.
func (c *Conn) Send(ctx context.Context, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg) > int(c.cfg.maxMessageSize) {
		return ErrMessageTooLarge
	}

	buf := make([]byte, lenPrefixSize+len(msg))
	binary.BigEndian.PutUint32(buf, uint32(len(msg)))
	copy(buf[lenPrefixSize:], msg)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.stream.Write(buf); err != nil {
		return fmt.Errorf("quic: write: %w", err)
	}
	return nil
}

// Receive reads the next length-prefixed message. A clean shutdown of
// the counterpart maps to io.EOF.
func (c *Conn) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var prefix [lenPrefixSize]byte
	if _, err := io.ReadFull(c.stream, prefix[:]); err != nil {
		return nil, c.mapReadError(err)
	}

	n := binary.BigEndian.Uint32(prefix[:])
	if n > c.cfg.maxMessageSize {
		return nil, ErrMessageTooLarge
	}

	msg := make([]byte, n)
	if _, err := io.ReadFull(c.stream, msg); err != nil {
		// A truncated message is a framing failure, not a clean end.
		return nil, fmt.Errorf("quic: truncated message: %w", err)
	}
	return msg, nil
}

// mapReadError normalizes stream shutdown errors: a FIN from the
// counterpart or our own close become io.EOF.
func (c *Conn) mapReadError(err error) error {
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	var appErr *quic.ApplicationError
	if errors.As(err, &appErr) && appErr.ErrorCode == 0 {
		return io.EOF
	}
	return fmt.Errorf("quic: read: %w", err)
}

// Close finishes the stream and closes the connection. Idempotent.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.stream.Close()
		c.qc.CloseWithError(0, "closed")
	})
	return nil
}

// RemoteFingerprint returns the counterpart's identity fingerprint.
func (c *Conn) RemoteFingerprint() (string, error) {
	certs := c.qc.ConnectionState().TLS.PeerCertificates
	if len(certs) == 0 {
		return "", errors.New("quic: peer presented no certificate")
	}
	return CertificateFingerprint(certs[0]), nil
}

func newTLSConfig(id *Identity, cfg config) *tls.Config {
	tc := &tls.Config{
		Certificates: []tls.Certificate{id.cert},
		NextProtos:   []string{NextProto},
		// Trust is by fingerprint pinning, not chains: certificates are
		// self-signed by construction.
		InsecureSkipVerify: true,
		ClientAuth:         tls.RequireAnyClientCert,
	}
	if cfg.pinnedPeer != "" {
		tc.VerifyPeerCertificate = pinVerifier(cfg.pinnedPeer)
	}
	return tc
}

func newQUICConfig(cfg config) *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:  cfg.idleTimeout,
		KeepAlivePeriod: cfg.keepAlivePeriod,
	}
}

// Dial connects to a tandem QUIC endpoint and opens the protocol
// stream, presenting id to the counterpart.
func Dial(ctx context.Context, addr string, id *Identity, opts ...Option) (*Conn, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	qc, err := quic.DialAddr(ctx, addr, newTLSConfig(id, cfg), newQUICConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("quic: dial %s: %w", addr, err)
	}

	stream, err := qc.OpenStreamSync(ctx)
	if err != nil {
		qc.CloseWithError(1, "no stream")
		return nil, fmt.Errorf("quic: open stream: %w", err)
	}

	return &Conn{qc: qc, stream: stream, cfg: cfg}, nil
}

// Listener accepts tandem QUIC connections.
type Listener struct {
	ql  *quic.Listener
	cfg config
}

// Listen binds a QUIC listener presenting id to dialers.
func Listen(addr string, id *Identity, opts ...Option) (*Listener, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ql, err := quic.ListenAddr(addr, newTLSConfig(id, cfg), newQUICConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("quic: listen %s: %w", addr, err)
	}
	return &Listener{ql: ql, cfg: cfg}, nil
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() string {
	return l.ql.Addr().String()
}

// Accept waits for the next connection and its protocol stream.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	qc, err := l.ql.Accept(ctx)
	if err != nil {
		return nil, fmt.Errorf("quic: accept: %w", err)
	}

	// The dialer opens the stream; it becomes visible here with its
	// first bytes.
	stream, err := qc.AcceptStream(ctx)
	if err != nil {
		qc.CloseWithError(1, "no stream")
		return nil, fmt.Errorf("quic: accept stream: %w", err)
	}

	return &Conn{qc: qc, stream: stream, cfg: l.cfg}, nil
}

// Close stops the listener. Established connections are unaffected.
func (l *Listener) Close() error {
	return l.ql.Close()
}
