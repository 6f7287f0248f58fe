// Package http provides HTTP-backed implementations of the docdex fetch and
// catalog services for static documentation sites that don't require
// JavaScript rendering.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/docdex"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements docdex.Fetcher at compile time.
var _ docdex.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves page content over plain HTTP. Unlike rod.Fetcher it does
// not execute JavaScript and is suitable for static sites only.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	now       func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with requests.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithClock overrides the time source used for FetchedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the page at url. Non-2xx responses yield an error carrying
// the HTTP status.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*docdex.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, docdex.StatusErrorf(resp.StatusCode, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &docdex.FetchResult{
		HTML:          string(body),
		Status:        resp.StatusCode,
		Headers:       headers,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: len(body),
		FetchedAt:     f.now(),
	}, nil
}

// Close releases resources. For the HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
