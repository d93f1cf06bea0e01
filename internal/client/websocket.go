package client

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// WebSocket sends chat requests as JSON frames over one lazily dialled
// connection. Calls are serialised because replies carry no correlation id.
type WebSocket struct {
	url    string
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocket returns a transport for the ws:// or wss:// url.
func NewWebSocket(url string, handshakeTimeout time.Duration) *WebSocket {
	d := *websocket.DefaultDialer
	if handshakeTimeout > 0 {
		d.HandshakeTimeout = handshakeTimeout
	}
	return &WebSocket{url: url, dialer: &d}
}

// Send implements Transport. Exchanges share one connection and run one at
// a time in arrival order. A failed exchange drops the connection so the next
// call redials.
func (w *WebSocket) Send(ctx context.Context, req Request) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
		if err != nil {
			return "", errors.Wrap(err, "dial chat websocket")
		}
		w.conn = conn
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = w.conn.SetWriteDeadline(deadline)
		_ = w.conn.SetReadDeadline(deadline)
	} else {
		_ = w.conn.SetWriteDeadline(time.Time{})
		_ = w.conn.SetReadDeadline(time.Time{})
	}

	if err := w.conn.WriteJSON(req); err != nil {
		w.dropLocked()
		return "", errors.Wrap(err, "write chat frame")
	}
	_, raw, err := w.conn.ReadMessage()
	if err != nil {
		w.dropLocked()
		return "", errors.Wrap(err, "read chat frame")
	}
	return decodeReply(raw)
}

// Close closes the underlying connection, if any.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	err := w.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	w.dropLocked()
	return err
}

func (w *WebSocket) dropLocked() {
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
}
