// Package wmsapi is the HTTP/JSON client for the remote WMS REST API.
package wmsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrRemote matches every non-success answer from the API.
	ErrRemote = errors.New("wmsapi: remote error")
	// ErrTransport indicates the request never produced a response.
	ErrTransport = errors.New("wmsapi: transport failure")
)

// Error carries the status code and message the API answered with.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("wmsapi: status %d", e.Status)
	}
	return fmt.Sprintf("wmsapi: status %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrRemote) match.
func (e *Error) Is(target error) bool {
	return target == ErrRemote
}

// Result is the status code and message of a successful write.
type Result struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// envelope is the API's response wrapper. encoding/json matches keys without
// regard to case, so PascalCase answers decode too.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// Config holds the connection settings.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// Client talks to the WMS API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New constructs a client.
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenKey struct{}

// WithToken attaches a per-request bearer token that overrides the configured one.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) bearer(ctx context.Context) string {
	if tok, ok := ctx.Value(tokenKey{}).(string); ok && tok != "" {
		return tok
	}
	return c.token
}

// do performs one request and returns the decoded envelope.
func (c *Client) do(ctx context.Context, method, path string, body any) (envelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("wmsapi: encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return envelope{}, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return envelope{}, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return envelope{}, fmt.Errorf("wmsapi: decode response: %w", err)
		}
	}
	if resp.StatusCode >= 300 {
		return envelope{}, &Error{Status: resp.StatusCode, Message: env.Message}
	}
	if env.StatusCode != 0 && (env.StatusCode < 200 || env.StatusCode >= 300) {
		return envelope{}, &Error{Status: env.StatusCode, Message: env.Message}
	}
	if env.StatusCode == 0 {
		env.StatusCode = resp.StatusCode
	}
	return env, nil
}
