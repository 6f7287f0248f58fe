// Package goquery provides CSS-selector based parsing of documentation
// navigation markup.
package goquery

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docdex"
)

// DefaultLocale is the locale segment navigation URLs are canonicalized to.
const DefaultLocale = "en-us"

// Ensure NavigationParser implements docdex.PageParser at compile time.
var _ docdex.PageParser = (*NavigationParser)(nil)

// NavigationParser parses a service's navigation fragment into document
// pages. Placeholder links are skipped, locale segments are canonicalized,
// and duplicate URLs collapse to their first occurrence so navigation order
// is preserved.
type NavigationParser struct {
	base   *url.URL
	locale string
}

// NavOption configures a NavigationParser.
type NavOption func(*NavigationParser)

// WithLocale sets the locale URLs are canonicalized to.
// Defaults to DefaultLocale.
func WithLocale(locale string) NavOption {
	return func(p *NavigationParser) {
		p.locale = strings.ToLower(locale)
	}
}

// NewNavigationParser creates a parser resolving relative links against
// baseURL.
func NewNavigationParser(baseURL string, opts ...NavOption) (*NavigationParser, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "invalid base URL: %v", err)
	}
	p := &NavigationParser{base: base, locale: DefaultLocale}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ParsePages extracts document pages from navigation HTML for serviceCode.
func (p *NavigationParser) ParsePages(html string, serviceCode string) ([]docdex.DocumentPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]bool)
	var pages []docdex.DocumentPage

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || href == "#" || isNonHTTPLink(href) {
			return
		}

		resolved := p.resolve(href)
		if resolved == "" {
			return
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true

		handbook := p.handbookCode(resolved)
		pages = append(pages, docdex.DocumentPage{
			ID:           docdex.GeneratePageID(resolved),
			URL:          resolved,
			Title:        strings.TrimSpace(sel.Text()),
			Service:      serviceCode,
			Category:     docdex.DeriveCategory(handbook),
			HandbookCode: handbook,
			Level:        linkLevel(sel),
			Status:       docdex.PageStatusPending,
		})
	})

	return pages, nil
}

// resolve turns an href into a canonical same-host URL, or "" if the link
// should be skipped.
func (p *NavigationParser) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := p.base.ResolveReference(ref)
	if resolved.Host != p.base.Host {
		return ""
	}
	resolved.Fragment = ""
	resolved.Path = p.canonicalizeLocale(resolved.Path)
	return resolved.String()
}

var localeRe = regexp.MustCompile(`^[a-z]{2}-[a-z]{2}$`)

// canonicalizeLocale rewrites a leading locale path segment to the
// configured locale, so the same page linked under different locales
// deduplicates.
func (p *NavigationParser) canonicalizeLocale(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if localeRe.MatchString(strings.ToLower(seg)) {
			segments[i] = p.locale
		}
		break
	}
	return strings.Join(segments, "/")
}

// handbookCode returns the first path segment after the locale, which on the
// documentation portal names the handbook a page belongs to.
func (p *NavigationParser) handbookCode(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	afterLocale := false
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "" {
			continue
		}
		if !afterLocale {
			if strings.ToLower(seg) == p.locale {
				afterLocale = true
				continue
			}
			// No locale segment; the first segment is the handbook.
			return seg
		}
		return seg
	}
	return ""
}

var levelClassRe = regexp.MustCompile(`^level(\d+)$`)

// linkLevel reads the navigation depth from a levelN class token on the
// anchor or its enclosing list item. Defaults to 1.
func linkLevel(sel *goquery.Selection) int {
	for _, class := range []string{sel.AttrOr("class", ""), sel.Closest("li").AttrOr("class", "")} {
		for _, token := range strings.Fields(class) {
			m := levelClassRe.FindStringSubmatch(token)
			if m == nil {
				continue
			}
			if level, err := strconv.Atoi(m[1]); err == nil && level > 0 {
				return level
			}
		}
	}
	return 1
}

// isNonHTTPLink reports whether a href is a placeholder or non-HTTP scheme
// that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
