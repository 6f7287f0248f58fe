package mock

import (
	"context"

	"github.com/fwojciec/docdex"
)

var _ docdex.CatalogService = (*CatalogService)(nil)

// CatalogService is a mock implementation of docdex.CatalogService.
type CatalogService struct {
	FetchAllServicesFn  func(ctx context.Context) ([]docdex.ServiceCategory, error)
	FetchServicePagesFn func(ctx context.Context, serviceCode string) ([]docdex.DocumentPage, error)
}

func (s *CatalogService) FetchAllServices(ctx context.Context) ([]docdex.ServiceCategory, error) {
	return s.FetchAllServicesFn(ctx)
}

func (s *CatalogService) FetchServicePages(ctx context.Context, serviceCode string) ([]docdex.DocumentPage, error) {
	return s.FetchServicePagesFn(ctx, serviceCode)
}

var _ docdex.PageParser = (*PageParser)(nil)

// PageParser is a mock implementation of docdex.PageParser.
type PageParser struct {
	ParsePagesFn func(html string, serviceCode string) ([]docdex.DocumentPage, error)
}

func (p *PageParser) ParsePages(html string, serviceCode string) ([]docdex.DocumentPage, error) {
	return p.ParsePagesFn(html, serviceCode)
}
