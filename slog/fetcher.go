// Package slog provides logging decorators for docdex service interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docdex"
)

// Ensure LoggingFetcher implements docdex.Fetcher.
var _ docdex.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with per-fetch logging.
type LoggingFetcher struct {
	next   docdex.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next docdex.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (result *docdex.FetchResult, err error) {
	defer func(begin time.Time) {
		var status, bytes int
		if result != nil {
			status = result.Status
			bytes = result.ContentLength
		}
		f.logger.Info("fetch",
			"url", url,
			"status", status,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
