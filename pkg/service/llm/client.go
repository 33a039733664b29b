package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/easel-labs/easel/pkg/domain/interfaces"
	"github.com/easel-labs/easel/pkg/domain/model"
)

// Client talks to the model backend's generation endpoint. The backend is
// opaque: one POST, one SSE response stream of action frames.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

var _ interfaces.Generator = &Client{}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithModel sets the default model name used when a request has none
func WithModel(name string) Option {
	return func(c *Client) {
		c.model = name
	}
}

// New creates a backend client
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, goerr.New("backend base URL is required")
	}

	c := &Client{
		// Generation streams are long-lived; cancellation comes from the
		// request context, not a client timeout.
		httpClient: &http.Client{Timeout: 0},
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate starts a generation stream for the given request
func (c *Client) Generate(ctx context.Context, req *model.GenerateRequest) (interfaces.ActionStream, error) {
	if err := req.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid generate request")
	}
	if req.Model == "" {
		req.Model = c.model
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal generate request")
	}

	url := c.baseURL + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build generate request", goerr.V("url", url))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call backend", goerr.V("url", url))
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		errBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		if readErr != nil {
			return nil, goerr.Wrap(ErrUnexpectedStatus, "backend rejected request",
				goerr.V("status", resp.StatusCode))
		}
		return nil, goerr.Wrap(ErrUnexpectedStatus, "backend rejected request",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", strings.TrimSpace(string(errBody))))
	}

	return &Stream{
		body:    resp.Body,
		dec:     NewDecoder(resp.Body),
		started: time.Now(),
	}, nil
}

// Stream is one live generation stream
type Stream struct {
	body    io.ReadCloser
	dec     *Decoder
	started time.Time
}

var _ interfaces.ActionStream = &Stream{}

// Next returns the next decoded action; io.EOF after the terminator record
func (s *Stream) Next(ctx context.Context) (*model.Action, error) {
	return s.dec.Next(ctx)
}

// Close releases the underlying response body
func (s *Stream) Close() error {
	return s.body.Close()
}
