package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docdex"
)

// Ensure LoggingCatalogService implements docdex.CatalogService.
var _ docdex.CatalogService = (*LoggingCatalogService)(nil)

// LoggingCatalogService wraps a CatalogService with discovery logging.
type LoggingCatalogService struct {
	next   docdex.CatalogService
	logger *slog.Logger
}

// NewLoggingCatalogService creates a new LoggingCatalogService.
func NewLoggingCatalogService(next docdex.CatalogService, logger *slog.Logger) *LoggingCatalogService {
	return &LoggingCatalogService{next: next, logger: logger}
}

// FetchAllServices delegates to the wrapped service and logs the operation.
func (s *LoggingCatalogService) FetchAllServices(ctx context.Context) (categories []docdex.ServiceCategory, err error) {
	defer func(begin time.Time) {
		services := 0
		for _, c := range categories {
			services += len(c.Services)
		}
		s.logger.Info("catalog fetch",
			"categories", len(categories),
			"services", services,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchAllServices(ctx)
}

// FetchServicePages delegates to the wrapped service and logs the operation.
func (s *LoggingCatalogService) FetchServicePages(ctx context.Context, serviceCode string) (pages []docdex.DocumentPage, err error) {
	defer func(begin time.Time) {
		s.logger.Info("navigation fetch",
			"service", serviceCode,
			"pages", len(pages),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchServicePages(ctx, serviceCode)
}
