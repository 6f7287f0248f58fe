package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/crawl"
	docdexhttp "github.com/fwojciec/docdex/http"
	"github.com/fwojciec/docdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `{
	"groups": [
		{
			"name": "Compute",
			"products": [
				{"code": "ecs", "title": "Elastic Cloud Server", "description": "VMs", "uri": "/ecs"},
				{"code": "", "title": "No code, dropped"}
			]
		},
		{
			"name": "Storage",
			"products": [
				{"code": "obs", "title": "Object Storage Service"}
			]
		},
		{
			"name": "Empty group",
			"products": []
		}
	]
}`

func passthroughParser() *mock.PageParser {
	return &mock.PageParser{
		ParsePagesFn: func(html string, serviceCode string) ([]docdex.DocumentPage, error) {
			if html == "" {
				return nil, nil
			}
			url := "https://docs.example.com/" + serviceCode + "/overview"
			return []docdex.DocumentPage{{
				ID:      docdex.GeneratePageID(url),
				URL:     url,
				Title:   "Overview",
				Service: serviceCode,
				Level:   1,
			}}, nil
		},
	}
}

func fastRetry() crawl.RetryOptions {
	return crawl.RetryOptions{MaxRetries: 2, BaseDelay: time.Millisecond}
}

func TestCatalog_FetchAllServices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, docdexhttp.DefaultCatalogPath, r.URL.Path)
		_, _ = w.Write([]byte(catalogJSON))
	}))
	defer server.Close()

	catalog := docdexhttp.NewCatalog(nil, server.URL, passthroughParser())
	categories, err := catalog.FetchAllServices(context.Background())
	require.NoError(t, err)

	require.Len(t, categories, 2, "empty groups are dropped")
	assert.Equal(t, "Compute", categories[0].Name)
	require.Len(t, categories[0].Services, 1, "products without a code are dropped")
	assert.Equal(t, "ecs", categories[0].Services[0].Code)
	assert.Equal(t, "Compute", categories[0].Services[0].Category)
	assert.Equal(t, "obs", categories[1].Services[0].Code)
}

func TestCatalog_FetchAllServicesRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(catalogJSON))
	}))
	defer server.Close()

	catalog := docdexhttp.NewCatalog(nil, server.URL, passthroughParser(),
		docdexhttp.WithRetry(fastRetry()))
	categories, err := catalog.FetchAllServices(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCatalog_FallbackPolicy(t *testing.T) {
	t.Parallel()

	t.Run("default policy degrades to the built-in catalog", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		catalog := docdexhttp.NewCatalog(nil, server.URL, passthroughParser(),
			docdexhttp.WithRetry(crawl.RetryOptions{MaxRetries: 1, BaseDelay: time.Millisecond}))
		categories, err := catalog.FetchAllServices(context.Background())
		require.NoError(t, err)
		assert.Equal(t, docdexhttp.FallbackCatalog(), categories)
	})

	t.Run("fail policy propagates the error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		catalog := docdexhttp.NewCatalog(nil, server.URL, passthroughParser(),
			docdexhttp.WithRetry(crawl.RetryOptions{MaxRetries: 1, BaseDelay: time.Millisecond}),
			docdexhttp.WithFallbackPolicy(docdexhttp.FallbackFail))
		_, err := catalog.FetchAllServices(context.Background())
		require.Error(t, err)
	})
}

func TestCatalog_FetchServicePages(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/services/ecs/navigation", r.URL.Path)
		_, _ = w.Write([]byte("<ul><li>nav</li></ul>"))
	}))
	defer server.Close()

	catalog := docdexhttp.NewCatalog(nil, server.URL, passthroughParser())
	pages, err := catalog.FetchServicePages(context.Background(), "ecs")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "ecs", pages[0].Service)
}

func TestCatalog_FetchServicePagesNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	catalog := docdexhttp.NewCatalog(nil, server.URL, passthroughParser())
	pages, err := catalog.FetchServicePages(context.Background(), "nosuch")
	require.NoError(t, err, "a service without documentation is not an error")
	assert.Empty(t, pages)
	assert.NotNil(t, pages)
}

func TestCatalog_FetchServicePagesSitemapFallback(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/services/ecs/navigation", func(w http.ResponseWriter, r *http.Request) {
		// Reachable but empty navigation fragment.
		_, _ = w.Write([]byte(""))
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url><loc>` + serverURL(r) + `/ecs/overview</loc></url>
	<url><loc>` + serverURL(r) + `/ecs/quick-start</loc></url>
	<url><loc>` + serverURL(r) + `/obs/overview</loc></url>
</urlset>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	catalog := docdexhttp.NewCatalog(nil, server.URL, passthroughParser(),
		docdexhttp.WithSitemapFallback(docdexhttp.NewSitemap(nil)))
	pages, err := catalog.FetchServicePages(context.Background(), "ecs")
	require.NoError(t, err)

	require.Len(t, pages, 2, "only URLs under the service prefix are kept")
	assert.Equal(t, server.URL+"/ecs/overview", pages[0].URL)
	assert.Equal(t, "quick start", pages[1].Title)
	assert.Equal(t, "ecs", pages[0].Service)
	assert.NotEmpty(t, pages[0].ID)
}

// serverURL reconstructs the test server's base URL from the request.
func serverURL(r *http.Request) string {
	return "http://" + r.Host
}
