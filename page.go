package docdex

import (
	"net/url"
	"strings"
	"time"
	"unicode"
)

// PageStatus is the lifecycle state of a documentation page.
// Pages move pending → processing → scraped or failed.
type PageStatus string

// Page lifecycle states.
const (
	PageStatusPending    PageStatus = "pending"
	PageStatusProcessing PageStatus = "processing"
	PageStatusScraped    PageStatus = "scraped"
	PageStatusFailed     PageStatus = "failed"
)

// DocumentPage represents one documentation page discovered during
// navigation. (Service, ID) is unique; ID derives deterministically from the
// canonical URL.
type DocumentPage struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Service       string     `json:"service"`
	Category      string     `json:"category"`
	HandbookCode  string     `json:"handbookCode"`
	Level         int        `json:"level"`
	Status        PageStatus `json:"status"`
	ContentLength int        `json:"contentLength,omitempty"`
	Error         string     `json:"error,omitempty"`
	ScrapedAt     time.Time  `json:"scrapedAt,omitzero"`
}

// Validate returns an error if the page contains invalid fields.
func (p *DocumentPage) Validate() error {
	if p.Service == "" {
		return Errorf(EINVALID, "page service required")
	}
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	return nil
}

// CanonicalURL normalizes a URL for identity purposes: the fragment is
// stripped, the query is kept. URLs differing only by fragment are the same
// page; URLs differing by query are not.
func CanonicalURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Unparseable URLs keep their raw form minus any fragment.
		if idx := strings.Index(rawURL, "#"); idx != -1 {
			return rawURL[:idx]
		}
		return rawURL
	}
	u.Fragment = ""
	return u.String()
}

// GeneratePageID derives a stable page identifier from a URL: the canonical
// URL lower-cased with every run of non-alphanumeric characters collapsed to
// a single underscore. The function is idempotent: applying it to its own
// output is a no-op.
func GeneratePageID(rawURL string) string {
	canonical := strings.ToLower(CanonicalURL(rawURL))

	var sb strings.Builder
	sb.Grow(len(canonical))
	prevUnderscore := false
	for _, r := range canonical {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevUnderscore = false
		} else if !prevUnderscore {
			sb.WriteByte('_')
			prevUnderscore = true
		}
	}
	return strings.Trim(sb.String(), "_")
}

// Handbook category names derived from handbook codes.
const (
	CategoryAPIReference       = "api reference"
	CategoryProductDescription = "product description"
	CategoryQuickStart         = "quick start"
	CategoryUserGuide          = "user guide"
	CategoryBestPractices      = "best practices"
	CategoryFAQ                = "faq"
	CategoryOther              = "other"
)

// DeriveCategory maps a handbook code to a display category using fixed
// substring rules. Developer guides count as user guides.
func DeriveCategory(handbookCode string) string {
	code := strings.ToLower(handbookCode)
	switch {
	case strings.Contains(code, "api"):
		return CategoryAPIReference
	case strings.Contains(code, "productdesc"):
		return CategoryProductDescription
	case strings.Contains(code, "qs"):
		return CategoryQuickStart
	case strings.Contains(code, "usermanual"), strings.Contains(code, "umn"), strings.Contains(code, "devg"):
		return CategoryUserGuide
	case strings.Contains(code, "bestpractice"):
		return CategoryBestPractices
	case strings.Contains(code, "faq"), strings.Contains(code, "trouble"):
		return CategoryFAQ
	default:
		return CategoryOther
	}
}
