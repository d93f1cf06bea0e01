//go:generate go run go.uber.org/mock/mockgen -source=client.go -destination=clientmock/mock_transport.go -package=clientmock

// Package client performs the remote chat call: one request carrying the user
// text and language tag, one reply text back.
package client

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ErrMalformedResponse is returned when the reply body is not {"response": string}.
var ErrMalformedResponse = errors.New("malformed chat response")

// Request is the outbound chat payload.
type Request struct {
	Message string `json:"message"`
	Lang    string `json:"lang"`
}

// Response is the expected reply payload. Response is a pointer so a missing
// field can be told apart from an empty reply.
type Response struct {
	Response *string `json:"response"`
}

// Text returns the reply text.
func (r Response) Text() string {
	if r.Response == nil {
		return ""
	}
	return *r.Response
}

// StatusError reports a non-2xx HTTP reply.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat endpoint returned status %d", e.Code)
}

// Transport sends one chat request and waits for its reply.
type Transport interface {
	Send(ctx context.Context, req Request) (string, error)
}
