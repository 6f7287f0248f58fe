package fs

import (
	"context"
	"os"

	"github.com/fwojciec/docdex"
)

// Ensure RawStore implements docdex.RawStore at compile time.
var _ docdex.RawStore = (*RawStore)(nil)

// RawStore persists raw HTML documents on disk.
type RawStore struct {
	store
}

// NewRawStore creates a raw store rooted at base.
func NewRawStore(base string) *RawStore {
	return &RawStore{store: store{base: base, ext: ".html"}}
}

func (s *RawStore) Exists(ctx context.Context, service, pageID string) bool {
	return s.exists(service, pageID)
}

func (s *RawStore) SaveDocument(ctx context.Context, doc *docdex.RawDocument) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeFileAtomic(s.docPath(doc.Meta.Service, doc.Meta.ID), []byte(doc.HTML)); err != nil {
		return err
	}
	return writeJSON(s.metaPath(doc.Meta.Service, doc.Meta.ID), doc.Meta)
}

func (s *RawStore) LoadDocument(ctx context.Context, service, pageID string) (*docdex.RawDocument, error) {
	html, err := os.ReadFile(s.docPath(service, pageID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, docdex.Errorf(docdex.ENOTFOUND, "raw document %s/%s not found", service, pageID)
		}
		return nil, err
	}
	doc := &docdex.RawDocument{HTML: string(html)}
	if err := readJSON(s.metaPath(service, pageID), &doc.Meta); err != nil {
		if os.IsNotExist(err) {
			return nil, docdex.Errorf(docdex.ENOTFOUND, "raw document %s/%s metadata not found", service, pageID)
		}
		return nil, err
	}
	return doc, nil
}

func (s *RawStore) Services(ctx context.Context) ([]string, error) {
	return s.services()
}

func (s *RawStore) ServiceDocuments(ctx context.Context, service string) ([]string, error) {
	return s.serviceDocuments(service)
}

func (s *RawStore) TotalCount(ctx context.Context) (int, error) {
	return s.totalCount()
}

func (s *RawStore) WriteSummary(ctx context.Context, summary *docdex.StoreSummary) error {
	return s.writeSummary(summary)
}
