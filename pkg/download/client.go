// Package download fetches the raw data of the datasets that can be obtained
// programmatically: the EAGLE public database and the Galaxy Zoo 3D maps.
package download

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultRetries = 5
	DefaultBackoff = 100 * time.Millisecond
	DefaultTimeout = 10 * time.Second
)

// RetryStatuses are the response codes that are retried.
var RetryStatuses = []int{
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Client is a retrying HTTP client over one pooled connection set.
type Client struct {
	retries  int
	backoff  time.Duration
	timeout  time.Duration
	insecure bool
	logger   *slog.Logger

	http *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		c.retries = n
	}
}

// WithBackoff sets the fixed wait between attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.backoff = d
	}
}

// WithTimeout bounds the wait for response headers.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
// The SDSS mirror has been known to serve an incomplete chain.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		c.insecure = skip
	}
}

// WithLogger sets the logger used for retries and progress.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a Client with the given options applied over the defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		retries: DefaultRetries,
		backoff: DefaultBackoff,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = c.retries
	rc.RetryWaitMin = c.backoff
	rc.RetryWaitMax = c.backoff
	rc.Backoff = func(_, _ time.Duration, _ int, _ *http.Response) time.Duration {
		return c.backoff
	}
	rc.CheckRetry = checkRetry
	rc.Logger = c.logger

	if t, ok := rc.HTTPClient.Transport.(*http.Transport); ok {
		t.ResponseHeaderTimeout = c.timeout
		if c.insecure {
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
	}
	c.http = rc
	return c
}

// checkRetry retries transport errors and the statuses in RetryStatuses.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return slices.Contains(RetryStatuses, resp.StatusCode), nil
}

// Get issues a GET request. The caller must close the body of a successful
// response; any other status is returned as a *StatusError.
func (c *Client) Get(ctx context.Context, url string, auth *BasicAuth) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if auth != nil {
		req.SetBasicAuth(auth.User, auth.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.HTTPClient.CloseIdleConnections()
}

// BasicAuth holds HTTP basic credentials.
type BasicAuth struct {
	User     string
	Password string
}
