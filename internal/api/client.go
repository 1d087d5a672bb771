// Package api is the HTTP client for the Vensar document backend. It
// owns the wire surface (documents, folders, files endpoints), attaches
// the bearer token, and maps transport failures to domain errors so the
// layers above never see raw HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
	"github.com/Jahid786-lang/vensar-drive/internal/logger"
)

// DefaultTimeout bounds a single JSON request. Transfers (uploads,
// downloads) run for as long as bytes keep moving and are bounded only
// by the caller's context.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the bearer token attached to every request.
// Auth flows live outside this module; the client only consumes tokens.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource for a fixed token. An empty token sends
// unauthenticated requests.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() (string, error) {
	return string(s), nil
}

// Client talks to the backend REST API.
type Client struct {
	baseURL     string
	httpc       *http.Client
	tokens      TokenSource
	jsonTimeout time.Duration
	log         logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The client must
// not carry its own Timeout: that would cut off large transfers
// mid-stream.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithTimeout sets the per-request deadline for JSON endpoints. Zero
// disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.jsonTimeout = d }
}

// WithLogger replaces the client's logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend base URL cannot be empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid backend base URL: %w", err)
	}
	if tokens == nil {
		tokens = StaticToken("")
	}

	c := &Client{
		baseURL:     baseURL,
		httpc:       &http.Client{},
		tokens:      tokens,
		jsonTimeout: DefaultTimeout,
		log:         logger.Get().With("component", "api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newRequest builds a request with auth and tracing headers attached.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// doJSON issues a request with an optional JSON body and decodes the
// JSON response into out (skipped when out is nil).
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	if c.jsonTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.jsonTimeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapStatus(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", domain.ErrRemote, err)
	}
	return nil
}

// errorEnvelope is the backend's error body: message may be a string or
// an array of validation messages.
type errorEnvelope struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

// backendMessage extracts a single user-facing message from an error
// response body, tolerating both envelope shapes.
func backendMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if len(env.Message) > 0 {
		var s string
		if json.Unmarshal(env.Message, &s) == nil {
			return s
		}
		var list []string
		if json.Unmarshal(env.Message, &list) == nil && len(list) > 0 {
			return list[0]
		}
	}
	return env.Error
}

// mapStatus converts an HTTP error response to a domain error.
func (c *Client) mapStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := backendMessage(body)

	wrap := func(sentinel error) error {
		if msg == "" {
			return fmt.Errorf("%w: %s", sentinel, resp.Status)
		}
		return fmt.Errorf("%w: %s", sentinel, msg)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return wrap(domain.ErrNotFound)
	case http.StatusConflict:
		return wrap(domain.ErrAlreadyExists)
	case http.StatusForbidden:
		return wrap(domain.ErrPermissionDenied)
	case http.StatusUnauthorized:
		return wrap(domain.ErrUnauthorized)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return wrap(domain.ErrValidation)
	default:
		c.log.Warn("backend failure", "status", resp.StatusCode, "message", msg)
		return wrap(domain.ErrRemote)
	}
}
