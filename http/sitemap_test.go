package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	docdexhttp "github.com/fwojciec/docdex/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemap_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("discovers URLs from robots.txt sitemap directive", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("User-agent: *\nSitemap: http://" + r.Host + "/custom-sitemap.xml\n"))
		})
		mux.HandleFunc("/custom-sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<urlset>
	<url><loc>http://` + r.Host + `/ecs/overview</loc></url>
	<url><loc>http://` + r.Host + `/ecs/pricing</loc></url>
</urlset>`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		s := docdexhttp.NewSitemap(nil)
		urls, err := s.DiscoverURLs(context.Background(), server.URL, "")
		require.NoError(t, err)
		assert.Equal(t, []string{
			server.URL + "/ecs/overview",
			server.URL + "/ecs/pricing",
		}, urls)
	})

	t.Run("falls back to sitemap.xml without robots.txt", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<urlset><url><loc>http://` + r.Host + `/obs/overview</loc></url></urlset>`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		s := docdexhttp.NewSitemap(nil)
		urls, err := s.DiscoverURLs(context.Background(), server.URL, "")
		require.NoError(t, err)
		assert.Equal(t, []string{server.URL + "/obs/overview"}, urls)
	})

	t.Run("follows sitemap indexes recursively and deduplicates", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<sitemapindex>
	<sitemap><loc>http://` + r.Host + `/sitemap-a.xml</loc></sitemap>
	<sitemap><loc>http://` + r.Host + `/sitemap-b.xml</loc></sitemap>
	<sitemap><loc>http://` + r.Host + `/sitemap.xml</loc></sitemap>
</sitemapindex>`))
		})
		mux.HandleFunc("/sitemap-a.xml", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<urlset>
	<url><loc>http://` + r.Host + `/ecs/overview</loc></url>
	<url><loc>http://` + r.Host + `/ecs/shared</loc></url>
</urlset>`))
		})
		mux.HandleFunc("/sitemap-b.xml", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<urlset>
	<url><loc>http://` + r.Host + `/ecs/shared</loc></url>
	<url><loc>http://` + r.Host + `/ecs/pricing</loc></url>
</urlset>`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		s := docdexhttp.NewSitemap(nil)
		urls, err := s.DiscoverURLs(context.Background(), server.URL, "")
		require.NoError(t, err)
		assert.Equal(t, []string{
			server.URL + "/ecs/overview",
			server.URL + "/ecs/shared",
			server.URL + "/ecs/pricing",
		}, urls, "duplicates collapse to first occurrence; cyclic indexes terminate")
	})

	t.Run("filters by path prefix at path boundaries", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<urlset>
	<url><loc>http://` + r.Host + `/ecs</loc></url>
	<url><loc>http://` + r.Host + `/ecs/overview</loc></url>
	<url><loc>http://` + r.Host + `/ecs-backup/overview</loc></url>
	<url><loc>http://` + r.Host + `/obs/overview</loc></url>
</urlset>`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		s := docdexhttp.NewSitemap(nil)
		urls, err := s.DiscoverURLs(context.Background(), server.URL, "/ecs")
		require.NoError(t, err)
		assert.Equal(t, []string{server.URL + "/ecs", server.URL + "/ecs/overview"}, urls,
			"the service's own index page matches the prefix")
	})

	t.Run("returns empty slice when the site has no sitemap", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		s := docdexhttp.NewSitemap(nil)
		urls, err := s.DiscoverURLs(context.Background(), server.URL, "")
		require.NoError(t, err)
		assert.NotNil(t, urls)
		assert.Empty(t, urls)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := docdexhttp.NewSitemap(nil)
		_, err := s.DiscoverURLs(ctx, server.URL, "")
		require.Error(t, err)
	})
}
