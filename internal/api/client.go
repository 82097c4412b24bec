// Package api is the HTTP client for the storefront REST backend.
//
// Every call sends and expects JSON. Transport failures come back as
// *NetworkError, non-2xx responses as *BackendError; callers decide how to
// present them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/mmynk/tabkeeper/internal/middleware"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root, e.g. "https://example.com". Required.
	BaseURL string

	// Timeout bounds each request. Default: 30s.
	Timeout time.Duration

	// UserAgent is sent on every request. Default: "tabkeeper/1.0".
	UserAgent string

	// Transport is the innermost RoundTripper. Default: http.DefaultTransport.
	Transport http.RoundTripper

	// Middleware wraps Transport, outermost first.
	Middleware []middleware.Middleware
}

// Client talks to the backend.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	userAgent  string
}

// New creates a client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	baseURL, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", opts.BaseURL)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "tabkeeper/1.0"
	}

	// The backend tracks the login session with cookies as well as tokens.
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &Client{
		httpClient: &http.Client{
			Transport: middleware.Chain(opts.Transport, opts.Middleware...),
			Timeout:   opts.Timeout,
			Jar:       jar,
		},
		baseURL:   baseURL,
		userAgent: opts.UserAgent,
	}, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// do sends one request and returns the raw response body of a 2xx reply.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: extractMessage(data)}
	}
	return data, nil
}

// call sends a request and decodes a non-empty 2xx body into out.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.call(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, http.MethodPut, path, body, out)
}

// segment escapes one path segment such as a customer ID.
func segment(s string) string {
	return url.PathEscape(s)
}
