package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const maxResponseBytes = 1 << 20

// HTTP posts JSON requests to the chat endpoint.
type HTTP struct {
	endpoint string
	client   *http.Client
}

// NewHTTP returns a transport posting to endpoint. A zero timeout means the
// call runs until the server answers or the connection fails.
func NewHTTP(endpoint string, timeout time.Duration) *HTTP {
	return &HTTP{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Send implements Transport.
func (h *HTTP) Send(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "encode request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := h.client.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "post chat request")
	}
	defer resp.Body.Close()

	log.Debug().
		Str("endpoint", h.endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("chat request finished")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return "", &StatusError{Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", errors.Wrap(err, "read response")
	}
	return decodeReply(raw)
}

func decodeReply(raw []byte) (string, error) {
	var payload Response
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", errors.Wrap(ErrMalformedResponse, err.Error())
	}
	if payload.Response == nil {
		return "", errors.Wrap(ErrMalformedResponse, "missing response field")
	}
	return payload.Text(), nil
}
