package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/talklike/pkg/cache"
	"github.com/matzehuels/talklike/pkg/errors"
	"github.com/matzehuels/talklike/pkg/observability"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second
	// MaxBodyBytes caps a response body.
	MaxBodyBytes = 4 << 20
)

// Response is a fetched body and its content type.
type Response struct {
	Body        []byte
	ContentType string
}

// Client performs GET requests with shared headers, retry and caching.
type Client struct {
	http     *http.Client
	cache    cache.Cache
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithHeaders sets headers sent with every request.
func WithHeaders(h map[string]string) ClientOption {
	return func(c *Client) { c.headers = h }
}

// WithRetry sets the attempt count and initial backoff.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// NewClient creates a Client. A nil backend disables caching.
func NewClient(backend cache.Cache, opts ...ClientOption) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	c := &Client{
		http:     &http.Client{Timeout: DefaultTimeout},
		cache:    backend,
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cached returns the cached body for key, or fetches url, caches the body
// for ttl and returns it. refresh skips the cache lookup.
func (c *Client) Cached(ctx context.Context, key, url string, ttl time.Duration, refresh bool) (*Response, error) {
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			observability.Cache().OnCacheHit(ctx, "definition")
			return decodeCached(data), nil
		}
		observability.Cache().OnCacheMiss(ctx, "definition")
	}
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	data := encodeCached(resp)
	if err := c.cache.Set(ctx, key, data, ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "definition", len(data))
	}
	return resp, nil
}

// Get fetches url, retrying transient failures.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	var resp *Response
	err := Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		resp, err = c.do(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request %s", url)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "GET %s", url)
		}
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", url)}
	}
	defer res.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, res.StatusCode, time.Since(start))

	if err := checkStatus(url, res); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url)}
	}
	if len(body) > MaxBodyBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: body exceeds %d bytes", url, MaxBodyBytes)
	}
	return &Response{Body: body, ContentType: res.Header.Get("Content-Type")}, nil
}

func checkStatus(url string, res *http.Response) error {
	code := res.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s: not found", url)
	case code == http.StatusTooManyRequests || code >= 500:
		return &RetryableError{
			Err:   errors.New(errors.ErrCodeNetwork, "%s: status %d", url, code),
			After: retryAfter(res.Header, time.Now()),
		}
	default:
		return errors.New(errors.ErrCodeNetwork, "%s: status %d", url, code)
	}
}

// Cached entries store the content type on the first line.
func encodeCached(r *Response) []byte {
	return append([]byte(r.ContentType+"\n"), r.Body...)
}

func decodeCached(data []byte) *Response {
	for i, b := range data {
		if b == '\n' {
			return &Response{ContentType: string(data[:i]), Body: data[i+1:]}
		}
	}
	return &Response{Body: data}
}

func (r *Response) String() string {
	return fmt.Sprintf("%d bytes (%s)", len(r.Body), r.ContentType)
}
