package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client executes Resources over HTTP. It performs no retries and no caching;
// the only tunable beyond the platform defaults is the overall timeout.
type Client struct {
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout for the client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying *http.Client. Tests use this to
// install stub transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a transport client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorEnvelope is the generic server fault shape. Load falls back to it when
// the expected type does not decode, so a backend failure payload surfaces as
// a ServerError rather than a bare decoding failure.
type errorEnvelope struct {
	Error  bool    `json:"error"`
	Reason *string `json:"reason"`
}

// Load executes the given Resource and decodes the response body into T.
//
// Failure classification:
//   - URL construction problems        → ErrBadRequest
//   - transport faults (conn, DNS, …)  → ErrInvalidResponse
//   - body that decodes as the generic
//     error envelope but not as T      → *ServerError carrying the reason
//   - any other undecodable body       → ErrDecoding
//
// The decoded value is returned exactly as parsed; payload-embedded business
// errors (error:true in a well-formed response) are the caller's concern.
func Load[T any](ctx context.Context, c *Client, res Resource[T]) (T, error) {
	var zero T

	req, err := buildRequest(ctx, res.URL, res.Method)
	if err != nil {
		return zero, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("%w: reading body: %v", ErrInvalidResponse, err)
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		var envelope errorEnvelope
		if envErr := json.Unmarshal(body, &envelope); envErr == nil && envelope.Error && envelope.Reason != nil {
			return zero, &ServerError{Message: *envelope.Reason}
		}
		return zero, fmt.Errorf("%w: %v", ErrDecoding, err)
	}

	return result, nil
}

// buildRequest constructs the http.Request for an endpoint and method.
func buildRequest(ctx context.Context, endpoint string, method Method) (*http.Request, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	var bodyReader io.Reader
	switch method.name {
	case http.MethodGet, "":
		if len(method.query) > 0 {
			u.RawQuery = method.query.Encode()
		}
	case http.MethodPost:
		if method.body != nil {
			bodyReader = bytes.NewReader(method.body)
		}
	case http.MethodDelete:
		// no body
	default:
		return nil, fmt.Errorf("%w: unsupported method %q", ErrBadRequest, method.name)
	}

	name := method.name
	if name == "" {
		name = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, name, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	if method.name == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}
