//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Fetcher implements docdex.Fetcher.
var _ docdex.Fetcher = (*rod.Fetcher)(nil)

func TestFetcher_Fetch_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Don't respond - let context cancellation take effect
		select {}
	}))
	defer srv.Close()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	defer fetcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = fetcher.Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_Fetch_ReturnsRenderedHTML(t *testing.T) {
	t.Parallel()

	// Serve a page that uses JavaScript to add content
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
<div id="content">Loading...</div>
<script>
document.getElementById('content').textContent = 'JavaScript Rendered';
</script>
</body>
</html>`))
	}))
	defer srv.Close()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	defer fetcher.Close()

	result, err := fetcher.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, result.HTML, "JavaScript Rendered",
		"rendered HTML should contain JS-injected content")
	assert.NotContains(t, result.HTML, "Loading...",
		"rendered HTML should not contain the pre-render placeholder")
	assert.Equal(t, 200, result.Status)
	assert.Equal(t, len(result.HTML), result.ContentLength)
	assert.False(t, result.FetchedAt.IsZero())
}
