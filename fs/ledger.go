package fs

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fwojciec/docdex"
)

// Ensure Ledger implements docdex.FailedPageLedger at compile time.
var _ docdex.FailedPageLedger = (*Ledger)(nil)

// Ledger persists failed-page records as a single JSON array file, keyed by
// URL with upsert semantics.
type Ledger struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithNow overrides the time source, used by tests to control the
// retryable-age cutoff.
func WithNow(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger creates a ledger persisted at path.
func NewLedger(path string, opts ...LedgerOption) *Ledger {
	l := &Ledger{path: path, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddFailedPage upserts a record by URL. A re-failure increments the attempt
// count and refreshes the error, title, and last attempt time.
func (l *Ledger) AddFailedPage(ctx context.Context, record docdex.FailedPageRecord) error {
	if record.URL == "" {
		return docdex.Errorf(docdex.EINVALID, "failed page URL required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load()
	if err != nil {
		return err
	}

	if record.LastAttempt.IsZero() {
		record.LastAttempt = l.now()
	}

	for i, existing := range records {
		if existing.URL != record.URL {
			continue
		}
		record.Attempts = existing.Attempts + 1
		if record.Title == "" {
			record.Title = existing.Title
		}
		records[i] = record
		return l.save(records)
	}

	if record.Attempts < 1 {
		record.Attempts = 1
	}
	records = append(records, record)
	return l.save(records)
}

// RemoveFailedPage deletes the record for a URL. Removing an absent URL is
// not an error.
func (l *Ledger) RemoveFailedPage(ctx context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load()
	if err != nil {
		return err
	}
	kept := records[:0]
	removed := false
	for _, r := range records {
		if r.URL == url {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if !removed {
		return nil
	}
	return l.save(kept)
}

// FailedPages returns all records.
func (l *Ledger) FailedPages(ctx context.Context) ([]docdex.FailedPageRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// RetryablePages returns records with WillRetry set or a last attempt older
// than docdex.RetryablePageAge.
func (l *Ledger) RetryablePages(ctx context.Context) ([]docdex.FailedPageRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load()
	if err != nil {
		return nil, err
	}
	cutoff := l.now().Add(-docdex.RetryablePageAge)
	retryable := []docdex.FailedPageRecord{}
	for _, r := range records {
		if r.WillRetry || r.LastAttempt.Before(cutoff) {
			retryable = append(retryable, r)
		}
	}
	return retryable, nil
}

func (l *Ledger) load() ([]docdex.FailedPageRecord, error) {
	var records []docdex.FailedPageRecord
	if err := readJSON(l.path, &records); err != nil {
		if os.IsNotExist(err) {
			return []docdex.FailedPageRecord{}, nil
		}
		return nil, err
	}
	if records == nil {
		records = []docdex.FailedPageRecord{}
	}
	return records, nil
}

func (l *Ledger) save(records []docdex.FailedPageRecord) error {
	return writeJSON(l.path, records)
}
