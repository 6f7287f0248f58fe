// Package rod implements a JS-rendering page fetcher using Chrome browser
// automation. It serves documentation portals that build their navigation
// client-side, where a plain HTTP fetch returns an empty shell.
package rod

import (
	"context"
	"time"

	"github.com/fwojciec/docdex"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements docdex.Fetcher at compile time.
var _ docdex.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using a managed headless Chrome
// browser. Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	now     func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClock overrides the time source used for FetchedAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

// NewFetcher launches a headless Chrome browser. Close must be called when
// the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	manager, err := NewBrowserManager()
	if err != nil {
		return nil, err
	}
	f := &Fetcher{manager: manager, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML. The browser does
// not surface the HTTP status of the navigation, so a successfully rendered
// page reports status 200.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*docdex.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return nil, err
	}
	if err := page.WaitLoad(); err != nil {
		return nil, err
	}

	html, err := page.HTML()
	if err != nil {
		return nil, err
	}

	f.manager.IncrementPageCount()

	return &docdex.FetchResult{
		HTML:          html,
		Status:        200,
		ContentType:   "text/html",
		ContentLength: len(html),
		FetchedAt:     f.now(),
	}, nil
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
