package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Transport errors.
var (
	ErrClosed    = errors.New("ws: connection closed")
	ErrNonBinary = errors.New("ws: non-binary message received")
)

// Conn is one websocket connection exposed as a mux.Transport. Create
// one with Dial or Upgrade.
type Conn struct {
	conn   *websocket.Conn
	cfg    config
	logger *slog.Logger

	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

func newConn(wc *websocket.Conn, cfg config) *Conn {
	c := &Conn{
		conn:   wc,
		cfg:    cfg,
		logger: cfg.logger.With("conn_id", uuid.NewString()[:8]),
		done:   make(chan struct{}),
	}

	wc.SetReadLimit(cfg.readLimit)

	if cfg.pingInterval > 0 {
		// A pong pushes the read deadline out; a counterpart that goes
		// silent for two ping periods times out the next Receive.
		deadline := 2 * cfg.pingInterval
		wc.SetReadDeadline(time.Now().Add(deadline))
		wc.SetPongHandler(func(string) error {
			return wc.SetReadDeadline(time.Now().Add(deadline))
		})
		go c.pingLoop()
	}

	return c
}

// pingLoop sends heartbeat pings until the connection closes.
func (c *Conn) pingLoop() {
	ticker := time.NewTicker(c.cfg.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.writeTimeout))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}
		case <-c.done:
			return
		}
	}
}

// Send writes one mux frame as a binary websocket message. Safe for
// concurrent use.
func (c *Conn) Send(ctx context.Context, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.writeTimeout))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
		return fmt.Errorf("ws: write: %w", err)
	}
	return nil
}

// Receive returns the next binary message. A normal websocket closure
// maps to io.EOF; a text message is a protocol violation that fails the
// connection.
func (c *Conn) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mt, msg, err := c.conn.ReadMessage()
	if err != nil {
		select {
		case <-c.done:
			return nil, io.EOF
		default:
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("ws: read: %w", err)
	}

	if mt != websocket.BinaryMessage {
		c.logger.Warn("non-binary message", "type", mt)
		c.Close()
		return nil, ErrNonBinary
	}

	return msg, nil
}

// Close sends a close frame and tears the connection down. Idempotent.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)

		c.writeMu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(c.cfg.writeTimeout))
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()

		c.conn.Close()
	})
	return nil
}

// Dial connects to a tandem websocket endpoint. The URL scheme must be
// ws or wss; wss uses the TLS configuration from WithTLSConfig.
func Dial(ctx context.Context, url string, opts ...Option) (*Conn, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.handshakeTimeout,
		TLSClientConfig:  cfg.tlsConfig,
	}

	wc, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("ws: dial %s: %w (status %s)", url, err, resp.Status)
		}
		return nil, fmt.Errorf("ws: dial %s: %w", url, err)
	}

	return newConn(wc, cfg), nil
}

// Upgrade hijacks an HTTP request into a tandem websocket connection.
// Mount it on the route both peers agreed on.
func Upgrade(w http.ResponseWriter, r *http.Request, opts ...Option) (*Conn, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	if cfg.checkOrigin != nil {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return cfg.checkOrigin(r.Header.Get("Origin"))
		}
	}

	wc, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("ws: upgrade: %w", err)
	}

	return newConn(wc, cfg), nil
}

// SchemeFromHTTP rewrites an http(s) URL to its ws(s) counterpart, a
// convenience for tests and CLIs that start from an HTTP listener
// address.
func SchemeFromHTTP(url string) string {
	switch {
	case strings.HasPrefix(url, "https://"):
		return "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		return "ws://" + strings.TrimPrefix(url, "http://")
	default:
		return url
	}
}
