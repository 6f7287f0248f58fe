package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/docdex"
	docdexhttp "github.com/fwojciec/docdex/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body and response metadata", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		fetched := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		fetcher := docdexhttp.NewFetcher(docdexhttp.WithClock(func() time.Time { return fetched }))
		defer fetcher.Close()

		res, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Hello World</body></html>", res.HTML)
		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, "text/html; charset=utf-8", res.ContentType)
		assert.Equal(t, len(res.HTML), res.ContentLength)
		assert.Equal(t, fetched, res.FetchedAt)
		assert.Equal(t, "text/html; charset=utf-8", res.Headers["Content-Type"])
	})

	t.Run("sends configured user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		fetcher := docdexhttp.NewFetcher(docdexhttp.WithUserAgent("docdex/1.0"))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "docdex/1.0", gotUA)
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := docdexhttp.NewFetcher(docdexhttp.WithTimeout(10 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := docdexhttp.NewFetcher()
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, server.URL)
		require.Error(t, err)
	})

	t.Run("non-2xx carries the HTTP status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		fetcher := docdexhttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Equal(t, http.StatusTooManyRequests, docdex.ErrorStatus(err))
		assert.Equal(t, docdex.ERATELIMIT, docdex.ErrorCode(err))
	})

	t.Run("404 maps to ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		fetcher := docdexhttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Equal(t, docdex.ENOTFOUND, docdex.ErrorCode(err))
	})
}
