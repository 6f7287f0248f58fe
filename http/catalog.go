package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/crawl"
)

// FallbackPolicy decides what happens when the service catalog cannot be
// fetched.
type FallbackPolicy string

const (
	// FallbackBuiltin degrades to the built-in minimal catalog so
	// downstream stages keep working offline.
	FallbackBuiltin FallbackPolicy = "fallback"

	// FallbackFail propagates the catalog error.
	FallbackFail FallbackPolicy = "fail"
)

// Default endpoint paths on the documentation portal.
const (
	DefaultCatalogPath    = "/api/catalog/services"
	DefaultNavigationPath = "/services/%s/navigation"
)

// Ensure Catalog implements docdex.CatalogService at compile time.
var _ docdex.CatalogService = (*Catalog)(nil)

// Catalog resolves the documented service set and per-service page lists
// from the documentation portal's HTTP endpoints.
type Catalog struct {
	client  *http.Client
	baseURL string
	parser  docdex.PageParser
	sitemap *Sitemap
	policy  FallbackPolicy
	retry   crawl.RetryOptions
	logger  *slog.Logger

	catalogPath string
	navPath     string
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithFallbackPolicy sets the behavior when the catalog endpoint is
// unreachable. Defaults to FallbackBuiltin.
func WithFallbackPolicy(policy FallbackPolicy) CatalogOption {
	return func(c *Catalog) {
		c.policy = policy
	}
}

// WithRetry overrides retry behavior for catalog and navigation requests.
func WithRetry(opts crawl.RetryOptions) CatalogOption {
	return func(c *Catalog) {
		c.retry = opts
	}
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithSitemapFallback enables sitemap-based page discovery for services
// whose navigation fragment yields no pages.
func WithSitemapFallback(sitemap *Sitemap) CatalogOption {
	return func(c *Catalog) {
		c.sitemap = sitemap
	}
}

// WithEndpoints overrides the portal endpoint paths. navPath must contain
// one %s verb for the service code.
func WithEndpoints(catalogPath, navPath string) CatalogOption {
	return func(c *Catalog) {
		c.catalogPath = catalogPath
		c.navPath = navPath
	}
}

// NewCatalog creates a catalog service for the portal at baseURL. Navigation
// markup is parsed into pages by parser.
func NewCatalog(client *http.Client, baseURL string, parser docdex.PageParser, opts ...CatalogOption) *Catalog {
	if client == nil {
		client = http.DefaultClient
	}
	c := &Catalog{
		client:      client,
		baseURL:     strings.TrimRight(baseURL, "/"),
		parser:      parser,
		policy:      FallbackBuiltin,
		logger:      slog.New(slog.DiscardHandler),
		catalogPath: DefaultCatalogPath,
		navPath:     DefaultNavigationPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// catalogResponse is the wire format of the catalog endpoint.
type catalogResponse struct {
	Groups []struct {
		Name     string `json:"name"`
		Products []struct {
			Code        string `json:"code"`
			Title       string `json:"title"`
			Description string `json:"description"`
			URI         string `json:"uri"`
		} `json:"products"`
	} `json:"groups"`
}

// FetchAllServices retrieves the full service catalog with retry. When the
// endpoint stays unreachable the configured fallback policy applies.
func (c *Catalog) FetchAllServices(ctx context.Context) ([]docdex.ServiceCategory, error) {
	body, _, err := crawl.Do(ctx, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, c.baseURL+c.catalogPath)
	}, c.retry)
	if err != nil {
		if c.policy == FallbackFail {
			return nil, fmt.Errorf("fetching catalog: %w", err)
		}
		c.logger.Warn("catalog unreachable, using built-in fallback", "error", err)
		return FallbackCatalog(), nil
	}

	var decoded catalogResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		if c.policy == FallbackFail {
			return nil, fmt.Errorf("decoding catalog: %w", err)
		}
		c.logger.Warn("catalog response malformed, using built-in fallback", "error", err)
		return FallbackCatalog(), nil
	}

	categories := make([]docdex.ServiceCategory, 0, len(decoded.Groups))
	services := 0
	for _, group := range decoded.Groups {
		category := docdex.ServiceCategory{Name: group.Name}
		for _, p := range group.Products {
			if p.Code == "" {
				continue
			}
			category.Services = append(category.Services, docdex.Service{
				Code:        p.Code,
				Title:       p.Title,
				Category:    group.Name,
				Description: p.Description,
				URI:         p.URI,
			})
		}
		if len(category.Services) == 0 {
			continue
		}
		services += len(category.Services)
		categories = append(categories, category)
	}

	c.logger.Info("catalog fetched", "categories", len(categories), "services", services)
	return categories, nil
}

// FetchServicePages retrieves and parses the navigation tree for one
// service. A service without documentation (404) yields an empty slice. When
// navigation yields no pages and sitemap fallback is configured, pages are
// discovered from the provider sitemap instead.
func (c *Catalog) FetchServicePages(ctx context.Context, serviceCode string) ([]docdex.DocumentPage, error) {
	navURL := c.baseURL + fmt.Sprintf(c.navPath, url.PathEscape(serviceCode))

	body, _, err := crawl.Do(ctx, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, navURL)
	}, c.retry)
	if err != nil {
		if docdex.ErrorStatus(err) == http.StatusNotFound {
			return []docdex.DocumentPage{}, nil
		}
		return nil, fmt.Errorf("fetching navigation for %s: %w", serviceCode, err)
	}

	pages, err := c.parser.ParsePages(string(body), serviceCode)
	if err != nil {
		return nil, fmt.Errorf("parsing navigation for %s: %w", serviceCode, err)
	}
	if len(pages) == 0 && c.sitemap != nil {
		return c.sitemapPages(ctx, serviceCode)
	}

	c.logger.Debug("service pages discovered", "service", serviceCode, "pages", len(pages))
	return pages, nil
}

// sitemapPages synthesizes document pages from sitemap URLs under the
// service's path prefix.
func (c *Catalog) sitemapPages(ctx context.Context, serviceCode string) ([]docdex.DocumentPage, error) {
	urls, err := c.sitemap.DiscoverURLs(ctx, c.baseURL, "/"+serviceCode)
	if err != nil {
		return nil, fmt.Errorf("sitemap discovery for %s: %w", serviceCode, err)
	}

	pages := make([]docdex.DocumentPage, 0, len(urls))
	for _, u := range urls {
		pages = append(pages, docdex.DocumentPage{
			ID:       docdex.GeneratePageID(u),
			URL:      u,
			Title:    titleFromURL(u),
			Service:  serviceCode,
			Category: docdex.DeriveCategory(u),
			Level:    2,
			Status:   docdex.PageStatusPending,
		})
	}
	c.logger.Info("service pages discovered via sitemap", "service", serviceCode, "pages", len(pages))
	return pages, nil
}

// titleFromURL derives a readable title from the last URL path segment.
func titleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	slug := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
	slug = strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return strings.TrimSpace(slug)
}

func (c *Catalog) get(ctx context.Context, targetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, docdex.StatusErrorf(resp.StatusCode, "HTTP %d for %s", resp.StatusCode, targetURL)
	}
	return io.ReadAll(resp.Body)
}

// FallbackCatalog is the built-in minimal catalog used when the portal's
// catalog endpoint is unreachable.
func FallbackCatalog() []docdex.ServiceCategory {
	return []docdex.ServiceCategory{
		{
			Name: "Compute",
			Services: []docdex.Service{
				{Code: "ecs", Title: "Elastic Cloud Server", Category: "Compute"},
			},
		},
		{
			Name: "Storage",
			Services: []docdex.Service{
				{Code: "obs", Title: "Object Storage Service", Category: "Storage"},
			},
		},
		{
			Name: "Networking",
			Services: []docdex.Service{
				{Code: "vpc", Title: "Virtual Private Cloud", Category: "Networking"},
			},
		},
		{
			Name: "Databases",
			Services: []docdex.Service{
				{Code: "rds", Title: "Relational Database Service", Category: "Databases"},
			},
		},
		{
			Name: "Management",
			Services: []docdex.Service{
				{Code: "iam", Title: "Identity and Access Management", Category: "Management"},
			},
		},
	}
}
