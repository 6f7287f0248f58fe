package docdex

import (
	"context"
	"time"
)

// RawDocumentMeta describes one fetched page alongside its raw HTML.
type RawDocumentMeta struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Service       string            `json:"service"`
	Status        int               `json:"status"`
	Headers       map[string]string `json:"headers,omitempty"`
	FetchedAt     time.Time         `json:"fetchedAt"`
	ContentType   string            `json:"contentType,omitempty"`
	ContentLength int               `json:"contentLength"`
}

// RawDocument is the raw HTML of one successfully fetched page. Produced once
// per successful fetch; immutable, though a re-fetch may overwrite it.
type RawDocument struct {
	Meta RawDocumentMeta `json:"metadata"`
	HTML string          `json:"html"`
}

// Validate returns an error if the document contains invalid fields.
func (d *RawDocument) Validate() error {
	if d.Meta.ID == "" {
		return Errorf(EINVALID, "raw document ID required")
	}
	if d.Meta.Service == "" {
		return Errorf(EINVALID, "raw document service required")
	}
	return nil
}

// CleanDocumentMeta describes one normalized markdown document.
type CleanDocumentMeta struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Service       string    `json:"service"`
	Category      string    `json:"category"`
	HandbookCode  string    `json:"handbookCode"`
	ContentLength int       `json:"contentLength"`
	ContentHash   string    `json:"contentHash,omitempty"`
	ProcessedAt   time.Time `json:"processedAt"`
}

// CleanDocument is normalized markdown derived solely from a RawDocument.
// It is regenerable at any time from the raw store.
type CleanDocument struct {
	Meta    CleanDocumentMeta `json:"metadata"`
	Content string            `json:"content"`
}

// Validate returns an error if the document contains invalid fields.
func (d *CleanDocument) Validate() error {
	if d.Meta.ID == "" {
		return Errorf(EINVALID, "clean document ID required")
	}
	if d.Meta.Service == "" {
		return Errorf(EINVALID, "clean document service required")
	}
	return nil
}

// StoreSummary is the top-level metadata written to a store after a full run.
type StoreSummary struct {
	RunID       string    `json:"runId"`
	CompletedAt time.Time `json:"completedAt"`
	Services    int       `json:"services"`
	Documents   int       `json:"documents"`
	Failed      int       `json:"failed"`
	Errors      []string  `json:"errors,omitempty"`
}

// RawStore persists raw HTML documents, keyed by service code and page ID.
type RawStore interface {
	// Exists reports whether a document is already stored.
	Exists(ctx context.Context, service, pageID string) bool

	// SaveDocument writes a document and its metadata.
	SaveDocument(ctx context.Context, doc *RawDocument) error

	// LoadDocument reads a stored document.
	// Returns ENOTFOUND if the document does not exist.
	LoadDocument(ctx context.Context, service, pageID string) (*RawDocument, error)

	// Services lists service codes with at least one stored document.
	Services(ctx context.Context) ([]string, error)

	// ServiceDocuments lists page IDs stored for a service.
	ServiceDocuments(ctx context.Context, service string) ([]string, error)

	// TotalCount returns the number of stored documents across services.
	TotalCount(ctx context.Context) (int, error)

	// WriteSummary writes the top-level run summary.
	WriteSummary(ctx context.Context, summary *StoreSummary) error
}

// CleanStore persists normalized markdown documents, keyed by service code
// and page ID. The layout mirrors RawStore.
type CleanStore interface {
	Exists(ctx context.Context, service, pageID string) bool
	SaveDocument(ctx context.Context, doc *CleanDocument) error
	LoadDocument(ctx context.Context, service, pageID string) (*CleanDocument, error)
	Services(ctx context.Context) ([]string, error)
	ServiceDocuments(ctx context.Context, service string) ([]string, error)
	TotalCount(ctx context.Context) (int, error)
	WriteSummary(ctx context.Context, summary *StoreSummary) error
}
