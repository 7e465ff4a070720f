package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/matzehuels/sbomlens/pkg/cache"
	"github.com/matzehuels/sbomlens/pkg/observability"
)

// Client provides shared HTTP functionality for all upstream API clients.
// It handles response caching, status mapping, optional retries, and
// default request headers.
//
// A Client is safe for concurrent use.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	namespace string
	ttl       time.Duration
	headers   map[string]string
	retries   int
}

// NewClient creates a Client that stores responses in backend under
// namespace for ttl. Pass nil for backend to disable caching and nil for
// headers if no default headers are needed.
func NewClient(backend cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     backend,
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// WithTimeout replaces the per-request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
	}
	return c
}

// WithRetries enables up to n retries of retryable failures (transport
// errors and 5xx responses). The default is no retry.
func (c *Client) WithRetries(n int) *Client {
	if n >= 0 {
		c.retries = n
	}
	return c
}

// Cached returns the cached value for key, or runs fetch and caches what
// it stored into v. If refresh is true the cache is not read.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	fullKey := cache.HTTPKey(c.namespace, key)
	if !refresh {
		if data, hit, err := c.cache.Get(ctx, fullKey); err == nil && hit {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, c.namespace)
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, c.namespace)
	}

	if err := cache.RetryWithBackoff(ctx, c.retries, fetch); err != nil {
		return err
	}

	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, fullKey, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, c.namespace, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs a GET with extra headers merged over the defaults.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.do(ctx, http.MethodGet, url, nil, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	return decode(body, v)
}

// PostJSON encodes payload as the request body and decodes the JSON
// response into v.
func (c *Client) PostJSON(ctx context.Context, url string, payload, v any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	body, err := c.do(ctx, http.MethodPost, url, bytes.NewReader(raw), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return err
	}
	defer body.Close()
	return decode(body, v)
}

func decode(body io.Reader, v any) error {
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden || code == http.StatusTooManyRequests:
		return &RateLimitError{Status: code, RetryAfter: retryAfter(resp.Header.Get("Retry-After"))}
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

func retryAfter(h string) int {
	if n, err := strconv.Atoi(h); err == nil && n > 0 {
		return n
	}
	return 0
}

// URLEncode percent-encodes s for use as a query value.
func URLEncode(s string) string { return url.QueryEscape(s) }
