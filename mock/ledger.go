package mock

import (
	"context"

	"github.com/fwojciec/docdex"
)

var _ docdex.FailedPageLedger = (*FailedPageLedger)(nil)

// FailedPageLedger is a mock implementation of docdex.FailedPageLedger.
type FailedPageLedger struct {
	AddFailedPageFn    func(ctx context.Context, record docdex.FailedPageRecord) error
	RemoveFailedPageFn func(ctx context.Context, url string) error
	FailedPagesFn      func(ctx context.Context) ([]docdex.FailedPageRecord, error)
	RetryablePagesFn   func(ctx context.Context) ([]docdex.FailedPageRecord, error)
}

func (l *FailedPageLedger) AddFailedPage(ctx context.Context, record docdex.FailedPageRecord) error {
	return l.AddFailedPageFn(ctx, record)
}

func (l *FailedPageLedger) RemoveFailedPage(ctx context.Context, url string) error {
	return l.RemoveFailedPageFn(ctx, url)
}

func (l *FailedPageLedger) FailedPages(ctx context.Context) ([]docdex.FailedPageRecord, error) {
	return l.FailedPagesFn(ctx)
}

func (l *FailedPageLedger) RetryablePages(ctx context.Context) ([]docdex.FailedPageRecord, error) {
	return l.RetryablePagesFn(ctx)
}
