package fs

import (
	"context"
	"os"

	"github.com/fwojciec/docdex"
)

// Ensure CleanStore implements docdex.CleanStore at compile time.
var _ docdex.CleanStore = (*CleanStore)(nil)

// CleanStore persists normalized markdown documents on disk. The layout
// mirrors RawStore with .md content files.
type CleanStore struct {
	store
}

// NewCleanStore creates a clean store rooted at base.
func NewCleanStore(base string) *CleanStore {
	return &CleanStore{store: store{base: base, ext: ".md"}}
}

func (s *CleanStore) Exists(ctx context.Context, service, pageID string) bool {
	return s.exists(service, pageID)
}

func (s *CleanStore) SaveDocument(ctx context.Context, doc *docdex.CleanDocument) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeFileAtomic(s.docPath(doc.Meta.Service, doc.Meta.ID), []byte(doc.Content)); err != nil {
		return err
	}
	return writeJSON(s.metaPath(doc.Meta.Service, doc.Meta.ID), doc.Meta)
}

func (s *CleanStore) LoadDocument(ctx context.Context, service, pageID string) (*docdex.CleanDocument, error) {
	content, err := os.ReadFile(s.docPath(service, pageID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, docdex.Errorf(docdex.ENOTFOUND, "clean document %s/%s not found", service, pageID)
		}
		return nil, err
	}
	doc := &docdex.CleanDocument{Content: string(content)}
	if err := readJSON(s.metaPath(service, pageID), &doc.Meta); err != nil {
		if os.IsNotExist(err) {
			return nil, docdex.Errorf(docdex.ENOTFOUND, "clean document %s/%s metadata not found", service, pageID)
		}
		return nil, err
	}
	return doc, nil
}

func (s *CleanStore) Services(ctx context.Context) ([]string, error) {
	return s.services()
}

func (s *CleanStore) ServiceDocuments(ctx context.Context, service string) ([]string, error) {
	return s.serviceDocuments(service)
}

func (s *CleanStore) TotalCount(ctx context.Context) (int, error) {
	return s.totalCount()
}

func (s *CleanStore) WriteSummary(ctx context.Context, summary *docdex.StoreSummary) error {
	return s.writeSummary(summary)
}
