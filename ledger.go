package docdex

import (
	"context"
	"time"
)

// RetryablePageAge is how old a failed page's last attempt must be before it
// becomes retryable regardless of its WillRetry flag.
const RetryablePageAge = 7 * 24 * time.Hour

// FailedPageRecord is the durable record of a page that failed to fetch,
// keyed by URL. Records have upsert semantics: a re-failure updates the
// record in place, a subsequent success removes it.
type FailedPageRecord struct {
	Service     string    `json:"service"`
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	Error       string    `json:"error"`
	Attempts    int       `json:"attempts"`
	LastAttempt time.Time `json:"lastAttempt"`
	WillRetry   bool      `json:"willRetry,omitempty"`
}

// FailedPageLedger durably records failed pages so a later run can retry only
// the ledger's retryable set instead of re-scanning the full catalog.
type FailedPageLedger interface {
	// AddFailedPage upserts a record by URL, incrementing its attempt count.
	AddFailedPage(ctx context.Context, record FailedPageRecord) error

	// RemoveFailedPage deletes the record for a URL. Removing an absent URL
	// is not an error.
	RemoveFailedPage(ctx context.Context, url string) error

	// FailedPages returns all records.
	FailedPages(ctx context.Context) ([]FailedPageRecord, error)

	// RetryablePages returns records with WillRetry set or a last attempt
	// older than RetryablePageAge.
	RetryablePages(ctx context.Context) ([]FailedPageRecord, error)
}
