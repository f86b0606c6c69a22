package roblox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"rblxlocate/pkg/config"
	errs "rblxlocate/pkg/errors"
	"rblxlocate/pkg/logger"
	"rblxlocate/pkg/ratelimit"
	"rblxlocate/pkg/retry"
)

// ErrClosed is returned by requests issued after Close
var ErrClosed = errors.New("roblox client is closed")

// DefaultUserAgent is sent when no other user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Client wraps one HTTP session against the Roblox web API. It is safe for
// concurrent use once constructed.
type Client struct {
	httpClient        *http.Client
	headers           map[string]string
	gamesBaseURL      string
	thumbnailsBaseURL string
	logger            logger.Logger
	limiter           ratelimit.Limiter
	retry             *retry.Config

	closeOnce sync.Once
	closed    atomic.Bool
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient reuses an existing HTTP client instead of creating one
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBaseURLs points the client at alternative hosts. Empty values keep the default.
func WithBaseURLs(games, thumbnails string) Option {
	return func(c *Client) {
		if games != "" {
			c.gamesBaseURL = games
		}
		if thumbnails != "" {
			c.thumbnailsBaseURL = thumbnails
		}
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.headers["User-Agent"] = ua
		}
	}
}

// WithTimeout sets a per-request deadline. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLimiter throttles every request through l. A nil limiter disables throttling.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithRetry retries failed requests per cfg. A nil cfg means a single attempt.
func WithRetry(cfg *retry.Config) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// FromConfig translates the roblox, http, rate_limit and retry sections into options
func FromConfig(cfg *config.Config, log logger.Logger) []Option {
	return []Option{
		WithLogger(log),
		WithHTTPClient(newHTTPClient(cfg.HTTP.MaxIdleConns)),
		WithTimeout(cfg.HTTP.Timeout),
		WithBaseURLs(cfg.Roblox.GamesBaseURL, cfg.Roblox.ThumbnailsBaseURL),
		WithUserAgent(cfg.Roblox.UserAgent),
		WithLimiter(ratelimit.PerMinute(cfg.RateLimit.RequestsPerMinute)),
		WithRetry(retry.FromConfig(cfg.Retry, log)),
	}
}

func newHTTPClient(maxIdleConns int) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if maxIdleConns > 0 {
		transport.MaxIdleConns = maxIdleConns
		transport.MaxIdleConnsPerHost = maxIdleConns
	}
	return &http.Client{Transport: transport}
}

// NewClient creates an anonymous client carrying no credential
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: newHTTPClient(0),
		headers: map[string]string{
			"User-Agent":      DefaultUserAgent,
			"Accept":          "application/json",
			"Accept-Language": "en-US,en;q=0.9",
		},
		gamesBaseURL:      GamesBaseURL,
		thumbnailsBaseURL: ThumbnailsBaseURL,
		logger:            logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login creates a client whose every request carries token as the
// .ROBLOSECURITY cookie. The token is not validated; a bad token surfaces
// as an auth error on the first request.
func Login(token string, opts ...Option) (*Client, error) {
	c := NewClient(opts...)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	for _, base := range []string{c.gamesBaseURL, c.thumbnailsBaseURL} {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", base, err)
		}
		jar.SetCookies(u, []*http.Cookie{{
			Name:     SecurityCookie,
			Value:    token,
			Path:     "/",
			Secure:   u.Scheme == "https",
			HttpOnly: true,
		}})
	}

	// Copy so an injected client is not mutated; the transport stays shared.
	hc := *c.httpClient
	hc.Jar = jar
	c.httpClient = &hc

	c.logger.Debug("session cookie installed")
	return c, nil
}

// Close releases idle pooled connections. It is safe to call more than once;
// only the first call has an effect.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.httpClient.CloseIdleConnections()
		c.logger.Debug("roblox client closed")
	})
	return nil
}

// Instances fetches one page of running instances for a place
func (c *Client) Instances(ctx context.Context, placeID, startIndex string) (*Instances, error) {
	target := InstancesURL(c.gamesBaseURL, placeID, startIndex)

	c.logger.DebugWithFields("fetching instance page", map[string]interface{}{
		"place_id":    placeID,
		"start_index": startIndex,
	})

	body, status, err := c.get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetching instances of place %s at %s: %w", placeID, startIndex, err)
	}

	page, err := decodeInstances(body, status)
	if err != nil {
		c.logger.ErrorWithFields("failed to decode instance page", map[string]interface{}{
			"place_id":     placeID,
			"start_index":  startIndex,
			"error":        err.Error(),
			"body_preview": preview(body),
		})
		return nil, fmt.Errorf("decoding instances of place %s at %s: %w", placeID, startIndex, err)
	}
	return page, nil
}

// HeadshotOption adjusts a headshot request
type HeadshotOption func(*headshotParams)

type headshotParams struct {
	size   Size
	format string
}

// WithSize selects the thumbnail edge length. Default ExtraTiny.
func WithSize(s Size) HeadshotOption {
	return func(p *headshotParams) {
		p.size = s
	}
}

// WithFormat selects the image format. Default "png".
func WithFormat(format string) HeadshotOption {
	return func(p *headshotParams) {
		if format != "" {
			p.format = format
		}
	}
}

// HeadshotURLs resolves avatar headshot URLs for userIDs in one request
func (c *Client) HeadshotURLs(ctx context.Context, userIDs []string, opts ...HeadshotOption) (*Headshots, error) {
	params := headshotParams{size: ExtraTiny, format: DefaultFormat}
	for _, opt := range opts {
		opt(&params)
	}
	if !params.size.Valid() {
		return nil, fmt.Errorf("unsupported headshot size %d", int(params.size))
	}

	ids := normalizeIDs(userIDs)
	if len(ids) == 0 {
		return nil, errors.New("at least one user id is required")
	}

	target := HeadshotURL(c.thumbnailsBaseURL, ids, params.format, params.size)
	c.logger.DebugWithFields("fetching headshots", map[string]interface{}{
		"user_ids": ids,
		"size":     params.size.String(),
		"format":   params.format,
	})

	body, status, err := c.get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetching headshots: %w", err)
	}

	entries, err := decodeHeadshotData(body, status)
	if err != nil {
		return nil, fmt.Errorf("decoding headshots: %w", err)
	}

	if len(entries) < len(ids) {
		c.logger.DebugWithFields("headshot response shorter than request", map[string]interface{}{
			"requested": len(ids),
			"returned":  len(entries),
		})
	}

	return &Headshots{entries: entries, requested: len(ids)}, nil
}

type response struct {
	body   []byte
	status int
}

// get performs one GET, throttled and retried per the client's options
func (c *Client) get(ctx context.Context, target string) ([]byte, int, error) {
	if c.closed.Load() {
		return nil, 0, ErrClosed
	}

	resp, err := retry.DoWithResult(ctx, func(ctx context.Context) (response, error) {
		return c.do(ctx, target)
	}, c.retry)
	if err != nil {
		return nil, resp.status, err
	}
	return resp.body, resp.status, nil
}

func (c *Client) do(ctx context.Context, target string) (response, error) {
	if c.limiter != nil {
		start := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			return response{}, errs.NewTransport("cancelled while throttled", err)
		}
		if waited := time.Since(start); waited > time.Millisecond {
			logger.LogRateLimit(c.logger, target, waited)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"url":      target,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return response{}, errs.NewTransport(fmt.Sprintf("GET %s", req.URL.Path), err)
	}
	defer resp.Body.Close()

	logger.LogRequest(c.logger, req.Method, target, resp.StatusCode, time.Since(start))

	if apiErr := errs.FromStatus(resp.StatusCode); apiErr != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return response{status: resp.StatusCode}, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{status: resp.StatusCode}, errs.NewTransport("failed to read response body", err)
	}
	return response{body: body, status: resp.StatusCode}, nil
}

func preview(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
