// Package apiclient is the back office's REST client for the Raya API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sekawan-grup/raya/internal/logger"
	"github.com/sekawan-grup/raya/internal/utils"
	"github.com/sekawan-grup/raya/internal/version"
)

// ErrMissingToken is returned before any request when an authenticated call
// has no stored token.
var ErrMissingToken = errors.New("no authentication token")

// APIError is a failed call: a transport error or a non-2xx response.
// Message is the body's "message" when present, else the call's fallback.
type APIError struct {
	Status  int // 0 on transport errors
	Message string
	Err     error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status carried by err, 0 when there is none.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// TokenSource is satisfied by session.TokenStore.
type TokenSource interface {
	Get() (string, bool)
}

type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	userAgent string
	logger    logger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log logger.Logger) Option {
	return func(c *Client) { c.logger = log.Named("api") }
}

// New returns a client for the API at baseURL (ex: "https://api.sekawan-grup.com").
// No timeout is set; callers bound calls with their context.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      http.DefaultClient,
		tokens:    tokens,
		userAgent: version.UserAgent(),
		logger:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messageBody struct {
	Message string `json:"message"`
}

// call is one request. authed calls read the token fresh and fail with
// ErrMissingToken when there is none. out may be nil.
type call struct {
	method   string
	path     string
	authed   bool
	body     any
	out      any
	fallback string
}

func (c *Client) do(ctx context.Context, cl call) error {
	var bearer string
	if cl.authed {
		tok, ok := c.tokens.Get()
		if !ok {
			return ErrMissingToken
		}
		bearer = tok
	}

	var body io.Reader
	contentType := ""
	switch b := cl.body.(type) {
	case nil:
	case *multipartBody:
		body, contentType = b.reader, b.contentType
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			logger.String("method", cl.method),
			logger.String("path", cl.path),
			logger.Error(err))
		return &APIError{Message: cl.fallback, Err: err}
	}
	defer utils.MustClose(resp.Body, c.logger)

	c.logger.Debug("api call",
		logger.String("method", cl.method),
		logger.String("path", cl.path),
		logger.Int("status", resp.StatusCode))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: cl.fallback, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := cl.fallback
		var mb messageBody
		if json.Unmarshal(data, &mb) == nil && mb.Message != "" {
			msg = mb.Message
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if cl.out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, cl.out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: cl.fallback, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
