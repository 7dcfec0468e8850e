package site

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
	"github.com/custodia-labs/librarian/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.PageFetcher = (*Client)(nil)

// DefaultUserAgent identifies the bot to the site.
const DefaultUserAgent = "Mozilla/5.0 (compatible; LibraryBot/1.0)"

// Options configures a Client.
type Options struct {
	UserAgent string

	// Timeout bounds a single request.
	Timeout time.Duration

	// RequestDelay is the minimum spacing between requests.
	RequestDelay time.Duration

	// MaxAttempts is the total number of tries per URL, including the first.
	MaxAttempts int

	// RetryDelay is the constant wait between attempts.
	RetryDelay time.Duration

	// MaxBodyBytes caps how much of a response is read.
	MaxBodyBytes int64
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		UserAgent:    DefaultUserAgent,
		Timeout:      30 * time.Second,
		RequestDelay: 1500 * time.Millisecond,
		MaxAttempts:  3,
		RetryDelay:   2 * time.Second,
		MaxBodyBytes: 10 << 20,
	}
}

// Client performs rate-limited GETs with bounded retry.
type Client struct {
	http    *http.Client
	limiter *RateLimiter
	opts    Options
}

// NewClient creates a client. Zero fields in opts take their defaults,
// except RequestDelay where zero means no spacing.
func NewClient(opts Options) *Client {
	def := DefaultOptions()
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = def.MaxBodyBytes
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: NewRateLimiter(opts.RequestDelay),
		opts:    opts,
	}
}

// Fetch returns the body of url. Transport errors and every non-2xx status
// are retried up to MaxAttempts. The error is a *domain.FetchError unless
// the context ended.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.opts.RetryDelay)),
		backoff.WithMaxTries(uint(c.opts.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug("Attempt %d for %s failed, retrying in %s: %v", attempt, url, next, err)
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return body, nil
}

// get performs one request.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(&domain.FetchError{URL: url, Err: err})
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		if wait := parseRetryAfter(resp.Header.Get("Retry-After")); wait > 0 {
			c.limiter.RecordRateLimited(wait)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &domain.FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes))
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// parseRetryAfter reads the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
