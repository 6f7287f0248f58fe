package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docdex"
)

// Ensure LoggingSearchService implements docdex.SearchService.
var _ docdex.SearchService = (*LoggingSearchService)(nil)

// LoggingSearchService wraps a SearchService with per-query logging.
type LoggingSearchService struct {
	next   docdex.SearchService
	logger *slog.Logger
}

// NewLoggingSearchService creates a new LoggingSearchService.
func NewLoggingSearchService(next docdex.SearchService, logger *slog.Logger) *LoggingSearchService {
	return &LoggingSearchService{next: next, logger: logger}
}

// Search delegates to the wrapped service and logs the query.
func (s *LoggingSearchService) Search(ctx context.Context, query string, opts docdex.SearchOptions) (results []docdex.SearchResult, err error) {
	defer func(begin time.Time) {
		s.logger.Info("search",
			"query", query,
			"service", opts.Service,
			"topK", opts.TopK,
			"results", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query, opts)
}
