package docdex

import "context"

// Service represents one documented cloud service from the provider catalog.
// Services are uniquely keyed by Code and immutable once fetched.
type Service struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	URI         string `json:"uri,omitempty"`
}

// Validate returns an error if the service contains invalid fields.
func (s *Service) Validate() error {
	if s.Code == "" {
		return Errorf(EINVALID, "service code required")
	}
	return nil
}

// ServiceCategory groups services for display. Categories play no role in
// indexing or retrieval.
type ServiceCategory struct {
	Name     string    `json:"name"`
	Services []Service `json:"services"`
}

// CatalogService resolves the set of documented services and, per service,
// the set of documentation pages.
type CatalogService interface {
	// FetchAllServices retrieves the full service catalog.
	// Depending on the configured fallback policy, an unreachable catalog
	// either fails or degrades to a small built-in catalog.
	FetchAllServices(ctx context.Context) ([]ServiceCategory, error)

	// FetchServicePages retrieves and parses the navigation tree for one
	// service. A service without documentation yields an empty slice, not
	// an error.
	FetchServicePages(ctx context.Context, serviceCode string) ([]DocumentPage, error)
}

// PageParser parses a service's navigation markup into document pages.
type PageParser interface {
	// ParsePages extracts document pages from navigation HTML.
	// Duplicate URLs are discarded, first occurrence wins, navigation
	// order is preserved.
	ParsePages(html string, serviceCode string) ([]DocumentPage, error)
}
