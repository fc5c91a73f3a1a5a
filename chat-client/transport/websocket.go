package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	closeGrace = time.Second
	readLimit  = 1 << 20
)

var ErrClosed = errors.New("connection closed")

// Conn is an open chat connection. Send and Close must not be called concurrently
// with each other; the client's event loop is the only caller.
type Conn interface {
	// Listen starts the read loop. onFrame receives every text frame in delivery
	// order; onClose is called exactly once when the loop ends, with nil if the
	// close was requested through Close.
	Listen(onFrame func([]byte), onClose func(error))
	Send(data []byte) error
	Close() error
}

// Dialer opens chat connections for a nickname.
type Dialer interface {
	Dial(ctx context.Context, username string) (Conn, error)
}

// WebSocketDialer dials the chat server's /ws endpoint with gorilla/websocket.
type WebSocketDialer struct {
	base   *url.URL
	dialer *websocket.Dialer
}

func NewDialer(base *url.URL, handshakeTimeout time.Duration) *WebSocketDialer {
	return &WebSocketDialer{
		base: base,
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

func (d *WebSocketDialer) Dial(ctx context.Context, username string) (Conn, error) {
	target, err := ChatURL(d.base, username)
	if err != nil {
		return nil, err
	}
	conn, resp, err := d.dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", d.base.Host, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", d.base.Host, err)
	}
	conn.SetReadLimit(readLimit)
	return &wsConn{conn: conn, done: make(chan struct{})}, nil
}

type wsConn struct {
	conn    *websocket.Conn
	closing atomic.Bool
	done    chan struct{}
}

func (c *wsConn) Listen(onFrame func([]byte), onClose func(error)) {
	go func() {
		defer close(c.done)
		for {
			typ, data, err := c.conn.ReadMessage()
			if err != nil {
				_ = c.conn.Close()
				if c.closing.Load() {
					err = nil
				}
				onClose(err)
				return
			}
			if typ != websocket.TextMessage {
				log.Debug().Int("type", typ).Msg("[transport] ignoring non-text frame")
				continue
			}
			onFrame(data)
		}
	}()
}

func (c *wsConn) Send(data []byte) error {
	if c.closing.Load() {
		return ErrClosed
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close starts the closing handshake and gives the server closeGrace to answer
// before the socket is torn down.
func (c *wsConn) Close() error {
	if c.closing.Swap(true) {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		_ = c.conn.Close()
		return fmt.Errorf("write close frame: %w", err)
	}
	go func() {
		t := time.NewTimer(closeGrace)
		defer t.Stop()
		select {
		case <-c.done:
		case <-t.C:
		}
		_ = c.conn.Close()
	}()
	return nil
}

// Unexpected reports whether a read-loop error is a transport failure rather than
// an orderly close from either side.
func Unexpected(err error) bool {
	if err == nil {
		return false
	}
	return !websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}
