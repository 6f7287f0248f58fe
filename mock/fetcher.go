package mock

import (
	"context"

	"github.com/fwojciec/docdex"
)

var _ docdex.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of docdex.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*docdex.FetchResult, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*docdex.FetchResult, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
