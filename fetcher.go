package docdex

import (
	"context"
	"time"
)

// FetchResult holds the raw content and response metadata of one fetch.
type FetchResult struct {
	HTML          string
	Status        int
	Headers       map[string]string
	ContentType   string
	ContentLength int
	FetchedAt     time.Time
}

// Fetcher retrieves raw page content from URLs.
// Implementations hide plain HTTP vs browser rendering.
type Fetcher interface {
	// Fetch retrieves the page at url. Non-2xx responses yield an error
	// carrying the HTTP status (see ErrorStatus); the status feeds both
	// retry eligibility and rate-limit detection.
	Fetch(ctx context.Context, url string) (*FetchResult, error)

	// Close releases fetcher resources.
	Close() error
}

// FetchProgressFunc is called after each page completes, in completion order
// (not submission order).
type FetchProgressFunc func(completed, total int, pageID string)
