package client

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// New builds the transport named by kind: "http" (default) or "ws".
func New(kind, endpoint string, timeout time.Duration) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "http":
		return NewHTTP(endpoint, timeout), nil
	case "ws", "websocket":
		return NewWebSocket(endpoint, timeout), nil
	default:
		return nil, errors.Errorf("unknown transport %q", kind)
	}
}
