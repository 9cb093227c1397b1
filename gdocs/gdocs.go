// Package gdocs fetches Google Docs documents with rate limiting and retries.
package gdocs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// Fetcher loads a document by ID.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*docs.Document, error)
}

// Default request rate, kept well below the per-user quota.
const (
	DefaultRequestsPerSecond = 5.0
	DefaultBurst             = 10
)

// Options configures a Client. One of Token, TokenSource or HTTPClient must
// be set; HTTPClient takes precedence and is used as is.
type Options struct {
	Token       string
	TokenSource oauth2.TokenSource
	HTTPClient  *http.Client
	// Endpoint overrides the API base URL.
	Endpoint string

	RequestsPerSecond float64
	Burst             int
	Retry             RetryPolicy
	// Timeout bounds each request. Zero means no per-request timeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

type getFunc func(ctx context.Context, id string) (*docs.Document, error)

// Client is a Fetcher backed by the Docs API. It is safe for concurrent use.
type Client struct {
	get     getFunc
	limiter *rate.Limiter
	policy  RetryPolicy
	timeout time.Duration
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
}

var _ Fetcher = (*Client)(nil)

// NewService creates a Docs API service from opts' credentials.
func NewService(ctx context.Context, opts Options) (*docs.Service, error) {
	var clientOpts []option.ClientOption
	switch {
	case opts.HTTPClient != nil:
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	case opts.TokenSource != nil:
		clientOpts = append(clientOpts, option.WithTokenSource(opts.TokenSource))
	case opts.Token != "":
		clientOpts = append(clientOpts, option.WithTokenSource(
			oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
		))
	default:
		return nil, ErrNoCredentials
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := docs.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create docs service: %w", err)
	}
	return svc, nil
}

// New creates a Client.
func New(ctx context.Context, opts Options) (*Client, error) {
	svc, err := NewService(ctx, opts)
	if err != nil {
		return nil, err
	}
	return newClient(func(ctx context.Context, id string) (*docs.Document, error) {
		return svc.Documents.Get(id).Context(ctx).Do()
	}, opts), nil
}

func newClient(get getFunc, opts Options) *Client {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		get:     get,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		policy:  opts.Retry.withDefaults(),
		timeout: opts.Timeout,
		logger:  logger,
		sleep:   sleepContext,
		now:     time.Now,
	}
}

// Fetch loads the document, waiting for the rate limiter before every
// request and retrying retryable failures per the retry policy.
func (c *Client) Fetch(ctx context.Context, id string) (*docs.Document, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("fetch document %s: %w", id, err)
		}

		doc, err := c.do(ctx, id)
		if err == nil {
			c.logger.Debug("document fetched", "id", id, "attempt", attempt)
			return doc, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetch document %s: %w", id, ctx.Err())
		}
		if !Retryable(err) || attempt >= c.policy.MaxAttempts {
			return nil, fmt.Errorf("fetch document %s: %w", id, WrapError(err))
		}

		delay := c.policy.Delay(attempt, retryAfter(err, c.now()))
		c.logger.Warn("fetch failed, retrying",
			"id", id,
			"attempt", attempt,
			"delay", delay,
			"error", err)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("fetch document %s: %w", id, err)
		}
	}
}

func (c *Client) do(ctx context.Context, id string) (*docs.Document, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.get(ctx, id)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
