package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
)

// Sitemap discovers page URLs from a site's sitemaps. It serves as the
// fallback discovery path for services whose navigation fragment yields no
// pages.
type Sitemap struct {
	client *http.Client
}

// NewSitemap creates a sitemap discoverer using the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemap(client *http.Client) *Sitemap {
	if client == nil {
		client = http.DefaultClient
	}
	return &Sitemap{client: client}
}

// DiscoverURLs returns all sitemap URLs under pathPrefix, deduplicated in
// sitemap order. Sitemaps are located via robots.txt Sitemap directives with
// /sitemap.xml as fallback; sitemap indexes are followed recursively. Returns
// an empty slice when the site has no sitemap.
func (s *Sitemap) DiscoverURLs(ctx context.Context, baseURL, pathPrefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	base.Path = ""

	sitemapURLs, err := s.findSitemapURLs(ctx, base)
	if err != nil {
		return nil, err
	}
	if len(sitemapURLs) == 0 {
		return []string{}, nil
	}

	var all []string
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)
	for _, sitemapURL := range sitemapURLs {
		urls, err := s.processSitemap(ctx, sitemapURL, seenSitemaps)
		if err != nil {
			return nil, err
		}
		for _, u := range urls {
			if seenURLs[u] {
				continue
			}
			seenURLs[u] = true
			if matchesPathPrefix(u, pathPrefix) {
				all = append(all, u)
			}
		}
	}
	if all == nil {
		all = []string{}
	}
	return all, nil
}

// matchesPathPrefix reports whether a URL's path sits under prefix,
// respecting path boundaries: /ecs matches /ecs, /ecs/ and /ecs/overview but
// not /ecs-backup.
func matchesPathPrefix(rawURL, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if parsed.Path == prefix {
		return true
	}
	return strings.HasPrefix(parsed.Path, prefix+"/")
}

// findSitemapURLs discovers sitemap locations from robots.txt, falling back
// to /sitemap.xml.
func (s *Sitemap) findSitemapURLs(ctx context.Context, base *url.URL) ([]string, error) {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	sitemaps, err := s.parseSitemapsFromRobots(ctx, robotsURL.String())
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}

	sitemapURL := base.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := s.urlExists(ctx, sitemapURL.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{sitemapURL.String()}, nil
	}
	return nil, nil
}

// parseSitemapsFromRobots extracts Sitemap: directives from robots.txt.
func (s *Sitemap) parseSitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.fetchURL(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			sitemapURL := strings.TrimSpace(line[len("sitemap:"):])
			if sitemapURL != "" {
				sitemaps = append(sitemaps, sitemapURL)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// processSitemap fetches and parses one sitemap, handling both urlset and
// sitemapindex roots. Already-seen sitemaps are skipped so cyclic indexes
// terminate.
func (s *Sitemap) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML")
	}

	if root.Tag == "sitemapindex" {
		var all []string
		for _, sm := range root.SelectElements("sitemap") {
			loc := sm.SelectElement("loc")
			if loc == nil {
				continue
			}
			nested := strings.TrimSpace(loc.Text())
			if nested == "" {
				continue
			}
			urls, err := s.processSitemap(ctx, nested, seen)
			if err != nil {
				return nil, err
			}
			all = append(all, urls...)
		}
		return all, nil
	}

	var urls []string
	for _, el := range root.SelectElements("url") {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

func (s *Sitemap) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}
	return resp.Body, nil
}

func (s *Sitemap) urlExists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}
