package ptv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.myptv.com"

// StatusError is returned for HTTP responses with a status of 400 or more.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Body)
}

// ServiceError carries the description the service returns instead of a result.
type ServiceError struct {
	Code        int
	Description string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error (code %d): %s", e.Code, e.Description)
}

// Client holds the transport shared by every PTV API adapter.
// It is safe for concurrent use.
type Client struct {
	session *http.Client
	apiKey  string
	baseURL string
	limiter *rate.Limiter
	backoff time.Duration
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.session = hc }
}

// WithRateLimit caps outgoing requests per second; zero disables limiting.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithRetryBackoff sets the initial delay between retried attempts.
func WithRetryBackoff(d time.Duration) ClientOption {
	return func(c *Client) { c.backoff = d }
}

func NewClient(apiKey, baseURL string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("PTV api key is empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(10), 5),
		backoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) newRequest(
	ctx context.Context,
	method string,
	path string,
	body []byte,
) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("apiKey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, statusError(resp.StatusCode, b)
	}
	return resp, nil
}

// statusError prefers the service's own description over the raw body.
func statusError(code int, body []byte) error {
	var payload struct {
		Description string `json:"description"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Description != "" {
		return &ServiceError{Code: code, Description: payload.Description}
	}
	return &StatusError{Code: code, Body: strings.TrimSpace(string(body))}
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) using exponential backoff while respecting context cancellation.
func (c *Client) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	const maxAttempts = 4
	backoff := c.backoff

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	code := 0
	var se *StatusError
	var sve *ServiceError
	switch {
	case errors.As(err, &se):
		code = se.Code
	case errors.As(err, &sve):
		code = sve.Code
	}
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// getJSON issues a GET with retries and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, path, nil)
	})
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
