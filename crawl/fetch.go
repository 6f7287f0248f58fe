package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/docdex"
)

// DefaultFetchTimeout bounds a single fetch attempt.
const DefaultFetchTimeout = 30 * time.Second

// PageFailure pairs a page with the error that ended its fetch attempts.
type PageFailure struct {
	Page docdex.DocumentPage
	Err  error
}

// PageFetcher fetches documentation pages through the adaptive limiter with
// bounded retry. Every attempt, including retries, passes through the
// limiter, so retries are admission-controlled and their outcomes feed the
// limiter's state.
type PageFetcher struct {
	Client  docdex.Fetcher
	Limiter *AdaptiveLimiter

	// Retry configures per-page retry. Zero value uses defaults.
	Retry RetryOptions

	// Timeout bounds each attempt. Defaults to DefaultFetchTimeout.
	Timeout time.Duration
}

// NewPageFetcher creates a page fetcher with default retry and timeout.
func NewPageFetcher(client docdex.Fetcher, limiter *AdaptiveLimiter) *PageFetcher {
	return &PageFetcher{Client: client, Limiter: limiter}
}

func (f *PageFetcher) timeout() time.Duration {
	if f.Timeout > 0 {
		return f.Timeout
	}
	return DefaultFetchTimeout
}

// FetchPage fetches one page and packages the response as a raw document.
func (f *PageFetcher) FetchPage(ctx context.Context, page docdex.DocumentPage) (*docdex.RawDocument, error) {
	op := func(ctx context.Context) (*docdex.FetchResult, error) {
		var res *docdex.FetchResult
		err := f.Limiter.Execute(ctx, func(ctx context.Context) error {
			attemptCtx, cancel := context.WithTimeout(ctx, f.timeout())
			defer cancel()

			var ferr error
			res, ferr = f.Client.Fetch(attemptCtx, page.URL)
			return ferr
		})
		return res, err
	}

	res, _, err := Do(ctx, op, f.Retry)
	if err != nil {
		return nil, err
	}

	return &docdex.RawDocument{
		Meta: docdex.RawDocumentMeta{
			ID:            page.ID,
			URL:           page.URL,
			Service:       page.Service,
			Status:        res.Status,
			Headers:       res.Headers,
			FetchedAt:     res.FetchedAt,
			ContentType:   res.ContentType,
			ContentLength: res.ContentLength,
		},
		HTML: res.HTML,
	}, nil
}

type pageResult struct {
	page docdex.DocumentPage
	doc  *docdex.RawDocument
	err  error
}

// FetchPages fetches pages concurrently, gated by the limiter. It returns
// the successfully fetched documents keyed by page ID and the pages that
// failed after exhausting retries. Progress is reported in completion order.
func (f *PageFetcher) FetchPages(ctx context.Context, pages []docdex.DocumentPage, progress docdex.FetchProgressFunc) (map[string]*docdex.RawDocument, []PageFailure) {
	results := make(chan pageResult)

	var wg sync.WaitGroup
	for _, page := range pages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := f.FetchPage(ctx, page)
			results <- pageResult{page: page, doc: doc, err: err}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	docs := make(map[string]*docdex.RawDocument, len(pages))
	var failures []PageFailure
	completed := 0
	for r := range results {
		completed++
		if r.err != nil {
			failures = append(failures, PageFailure{Page: r.page, Err: r.err})
		} else {
			docs[r.page.ID] = r.doc
		}
		if progress != nil {
			progress(completed, len(pages), r.page.ID)
		}
	}
	return docs, failures
}
