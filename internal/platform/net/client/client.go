// Package client is the outbound HTTP client shared by adapters that call third party services
package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-retryablehttp"

	pnet "stealthbridge/internal/platform/net"
	perr "stealthbridge/internal/platform/errors"
	"stealthbridge/internal/platform/logger"
)

// Options configures retries and timeouts
type Options struct {
	Timeout  time.Duration
	RetryMax int
	WaitMin  time.Duration
	WaitMax  time.Duration
}

// DefaultOptions are used for zero fields
var DefaultOptions = Options{
	Timeout:  30 * time.Second,
	RetryMax: 3,
	WaitMin:  200 * time.Millisecond,
	WaitMax:  2 * time.Second,
}

// Client sends JSON requests with retry behavior
type Client struct {
	base *http.Client
}

// New returns a client; zero option fields take DefaultOptions
func New(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = DefaultOptions.Timeout
	}
	if o.RetryMax < 0 {
		o.RetryMax = 0
	} else if o.RetryMax == 0 {
		o.RetryMax = DefaultOptions.RetryMax
	}
	if o.WaitMin <= 0 {
		o.WaitMin = DefaultOptions.WaitMin
	}
	if o.WaitMax <= 0 {
		o.WaitMax = DefaultOptions.WaitMax
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = o.RetryMax
	rc.RetryWaitMin = o.WaitMin
	rc.RetryWaitMax = o.WaitMax
	rc.Logger = leveled{}
	rc.HTTPClient.Timeout = o.Timeout

	return &Client{base: rc.StandardClient()}
}

// Post sends body to url and returns the response body
func (c *Client) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "build request")
	}
	return c.do(ctx, req)
}

// Get fetches url and returns the response body
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "build request")
	}
	return c.do(ctx, req)
}

func addHeaders(ctx context.Context, r *http.Request) {
	reqID := pnet.RequestID(ctx)
	r.Header.Set("Content-Type", "application/json")
	if reqID != "" {
		r.Header.Set(middleware.RequestIDHeader, reqID)
	}
}

func (c *Client) do(ctx context.Context, r *http.Request) ([]byte, error) {
	addHeaders(ctx, r)

	resp, err := c.base.Do(r)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s %s", r.Method, r.URL.Redacted())
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.C(ctx).Error().Err(err).Msg("can not close body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "%s %s: unexpected status %d", r.Method, r.URL.Redacted(), resp.StatusCode)
	}
	return body, nil
}

// leveled adapts retryablehttp logging to the root zerolog logger
type leveled struct{}

var _ retryablehttp.LeveledLogger = leveled{}

func (leveled) Error(msg string, kv ...any) { logger.Get().Error().Fields(kv).Msg(msg) }
func (leveled) Info(msg string, kv ...any)  { logger.Get().Debug().Fields(kv).Msg(msg) }
func (leveled) Debug(msg string, kv ...any) { logger.Get().Trace().Fields(kv).Msg(msg) }
func (leveled) Warn(msg string, kv ...any)  { logger.Get().Warn().Fields(kv).Msg(msg) }
