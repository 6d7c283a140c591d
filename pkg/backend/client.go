// Package backend implements the HTTP client for an OpenAI-compatible
// chat completion endpoint.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/parleyhq/parley/pkg/chat"
)

const (
	// DefaultBaseURL is used when no backend URL is configured.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout bounds a single completion call.
	DefaultTimeout = 15 * time.Second

	completionsSuffix = "/chat/completions"
)

// ErrEmptyResponse is returned when the backend returns no choices.
var ErrEmptyResponse = errors.New("empty response")

// UpstreamError is a non-2xx status or transport failure from the backend.
// It is terminal for the affected call and never retried internally.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream request failed: %s", e.Message)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

// IsUpstreamError reports whether err is or wraps an UpstreamError.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// Doer performs a HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for an OpenAI-compatible completion API.
type Client struct {
	Model string

	token      string
	baseURL    string
	timeout    time.Duration
	httpClient Doer
}

// Option is an option for the backend client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient Doer) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// New returns a new backend client.
func New(baseURL, model, token string, opts ...Option) *Client {
	c := &Client{
		Model:      model,
		token:      token,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateChat sends a chat completion request.
// Each call carries its own fixed timeout; transport failures and non-2xx
// statuses are returned as *UpstreamError.
func (c *Client) CreateChat(ctx context.Context, r *chat.Request) (*chat.Response, error) {
	if r.Model == "" {
		r.Model = c.Model
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal chat request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(completionsSuffix), bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chat request")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := fmt.Sprintf("API returned unexpected status code: %d", resp.StatusCode)

		var errResp errorMessage
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			msg = errResp.Error.Message
		}
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	var response chat.Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, errors.Wrap(err, "failed to decode chat response")
	}
	if len(response.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return &response, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
}

func (c *Client) buildURL(suffix string) string {
	return fmt.Sprintf("%s%s", c.baseURL, suffix)
}

type errorMessage struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
