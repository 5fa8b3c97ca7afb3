// internal/adapters/upstream/client.go
package upstream

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"guide_gateway/internal/adapters/observability"
	"guide_gateway/internal/domain"
)

const (
	DefaultTimeout = 10 * time.Second
	userAgent      = "guide-gateway/1.0"
)

type Options struct {
	Timeout time.Duration // per call, including body read
	RPS     int // client-side rate limit shared by all callers; 0 means unlimited
	Retries int // extra attempts on transient failures; 0 disables retry
}

// Client is a JSON GET accessor bound to one upstream service.
// It is safe for concurrent use.
type Client struct {
	service string
	base    string
	hc      *http.Client
	rl      *rate.Limiter
	retries int
}

func New(service, base string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: invalid base URL %q", service, base)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	rl := rate.NewLimiter(rate.Inf, 0)
	if opts.RPS > 0 {
		rl = rate.NewLimiter(rate.Limit(opts.RPS), opts.RPS)
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Client{
		service: service,
		base:    strings.TrimRight(u.String(), "/"),
		hc:      &http.Client{Timeout: opts.Timeout},
		rl:      rl,
		retries: opts.Retries,
	}, nil
}

func (c *Client) Service() string { return c.service }

// GetJSON fetches path relative to the base URL and decodes the body into out.
// endpoint is the low-cardinality route label used for metrics.
// Every failure is a *domain.UpstreamError.
func (c *Client) GetJSON(ctx context.Context, endpoint, path string, out any) error {
	start := time.Now()
	status, err := c.get(ctx, path, out)
	observability.ObserveExternal(c.service, endpoint, status, time.Since(start))
	return err
}

// get performs a GET with optional client-side rate limiting, optional retries, and JSON decode into out.
// Retries only on network errors, 429 and 502/503/504, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, path string, out any) (int, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return 0, c.fail(path, 0, err)
	}

	target := c.base + path
	var lastErr error
	lastStatus := 0
	for i := 0; i <= c.retries; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return 0, c.fail(path, 0, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return 0, c.fail(path, 0, ctx.Err())
			}
			lastStatus, lastErr = 0, c.fail(path, 0, err)
			if i < c.retries && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return lastStatus, lastErr
		}

		code := resp.StatusCode
		switch {
		case code == http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return code, nil

		case code >= 200 && code < 300:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return code, c.malformed(path, err)
			}
			return code, nil

		case code == http.StatusNotFound:
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return code, c.fail(path, code, domain.ErrNotFound)

		case transient(code):
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			lastStatus, lastErr = code, c.fail(path, code, nil)
			if i >= c.retries {
				return lastStatus, lastErr
			}
			if wait == 0 {
				wait = backoff(i)
			}
			if !sleepCtx(ctx, wait) {
				return lastStatus, c.fail(path, 0, ctx.Err())
			}

		default:
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return code, c.fail(path, code, nil)
		}
	}

	return lastStatus, lastErr
}

func (c *Client) fail(path string, status int, cause error) *domain.UpstreamError {
	var msg string
	switch {
	case status != 0:
		msg = fmt.Sprintf("%s service: GET %s: %d %s", c.service, path, status, http.StatusText(status))
	case isTimeout(cause):
		msg = fmt.Sprintf("%s service: GET %s: timeout after %s", c.service, path, c.hc.Timeout)
	default:
		msg = fmt.Sprintf("%s service: GET %s: %v", c.service, path, cause)
	}
	return &domain.UpstreamError{Service: c.service, Path: path, Status: status, Message: msg, Err: cause}
}

// malformed reports a 2xx body that does not match the expected schema.
func (c *Client) malformed(path string, cause error) *domain.UpstreamError {
	return &domain.UpstreamError{
		Service: c.service,
		Path:    path,
		Status:  http.StatusBadGateway,
		Message: fmt.Sprintf("%s service: GET %s: malformed response: %v", c.service, path, cause),
		Err:     cause,
	}
}

func transient(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (100ms, 200ms, 400ms...) with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
