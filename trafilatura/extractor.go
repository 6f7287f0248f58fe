// Package trafilatura extracts main content from documentation pages,
// removing navigation, sidebars, and other boilerplate.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/docdex"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements docdex.Extractor at compile time.
var _ docdex.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
// Extraction is lenient: when no main content can be isolated, the full
// markup is returned so the page still flows through normalization.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*docdex.ExtractResult, error) {
	if rawHTML == "" {
		return &docdex.ExtractResult{}, nil
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		// Boilerplate removal failed; keep the whole page.
		return &docdex.ExtractResult{ContentHTML: rawHTML}, nil
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}
	if contentHTML == "" {
		contentHTML = rawHTML
	}

	return &docdex.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
