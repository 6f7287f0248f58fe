package mock

import (
	"context"

	"github.com/fwojciec/docdex"
)

var _ docdex.RawStore = (*RawStore)(nil)

// RawStore is a mock implementation of docdex.RawStore.
type RawStore struct {
	ExistsFn           func(ctx context.Context, service, pageID string) bool
	SaveDocumentFn     func(ctx context.Context, doc *docdex.RawDocument) error
	LoadDocumentFn     func(ctx context.Context, service, pageID string) (*docdex.RawDocument, error)
	ServicesFn         func(ctx context.Context) ([]string, error)
	ServiceDocumentsFn func(ctx context.Context, service string) ([]string, error)
	TotalCountFn       func(ctx context.Context) (int, error)
	WriteSummaryFn     func(ctx context.Context, summary *docdex.StoreSummary) error
}

func (s *RawStore) Exists(ctx context.Context, service, pageID string) bool {
	return s.ExistsFn(ctx, service, pageID)
}

func (s *RawStore) SaveDocument(ctx context.Context, doc *docdex.RawDocument) error {
	return s.SaveDocumentFn(ctx, doc)
}

func (s *RawStore) LoadDocument(ctx context.Context, service, pageID string) (*docdex.RawDocument, error) {
	return s.LoadDocumentFn(ctx, service, pageID)
}

func (s *RawStore) Services(ctx context.Context) ([]string, error) {
	return s.ServicesFn(ctx)
}

func (s *RawStore) ServiceDocuments(ctx context.Context, service string) ([]string, error) {
	return s.ServiceDocumentsFn(ctx, service)
}

func (s *RawStore) TotalCount(ctx context.Context) (int, error) {
	return s.TotalCountFn(ctx)
}

func (s *RawStore) WriteSummary(ctx context.Context, summary *docdex.StoreSummary) error {
	return s.WriteSummaryFn(ctx, summary)
}

var _ docdex.CleanStore = (*CleanStore)(nil)

// CleanStore is a mock implementation of docdex.CleanStore.
type CleanStore struct {
	ExistsFn           func(ctx context.Context, service, pageID string) bool
	SaveDocumentFn     func(ctx context.Context, doc *docdex.CleanDocument) error
	LoadDocumentFn     func(ctx context.Context, service, pageID string) (*docdex.CleanDocument, error)
	ServicesFn         func(ctx context.Context) ([]string, error)
	ServiceDocumentsFn func(ctx context.Context, service string) ([]string, error)
	TotalCountFn       func(ctx context.Context) (int, error)
	WriteSummaryFn     func(ctx context.Context, summary *docdex.StoreSummary) error
}

func (s *CleanStore) Exists(ctx context.Context, service, pageID string) bool {
	return s.ExistsFn(ctx, service, pageID)
}

func (s *CleanStore) SaveDocument(ctx context.Context, doc *docdex.CleanDocument) error {
	return s.SaveDocumentFn(ctx, doc)
}

func (s *CleanStore) LoadDocument(ctx context.Context, service, pageID string) (*docdex.CleanDocument, error) {
	return s.LoadDocumentFn(ctx, service, pageID)
}

func (s *CleanStore) Services(ctx context.Context) ([]string, error) {
	return s.ServicesFn(ctx)
}

func (s *CleanStore) ServiceDocuments(ctx context.Context, service string) ([]string, error) {
	return s.ServiceDocumentsFn(ctx, service)
}

func (s *CleanStore) TotalCount(ctx context.Context) (int, error) {
	return s.TotalCountFn(ctx)
}

func (s *CleanStore) WriteSummary(ctx context.Context, summary *docdex.StoreSummary) error {
	return s.WriteSummaryFn(ctx, summary)
}
