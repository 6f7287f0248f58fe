package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Extractor implements docdex.Extractor at compile time.
var _ docdex.Extractor = (*trafilatura.Extractor)(nil)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title and main content", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head>
<title>Creating an ECS - Elastic Cloud Server</title>
<meta property="og:title" content="Creating an ECS">
</head>
<body>
<nav><a href="/">Home</a><a href="/ecs">ECS</a></nav>
<article>
<h1>Creating an ECS</h1>
<p>This section describes how to create an Elastic Cloud Server instance.</p>
<pre><code>POST /v1/{project_id}/cloudservers</code></pre>
</article>
<aside>Sidebar content</aside>
<footer>Copyright 2025</footer>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
		assert.Contains(t, result.ContentHTML, "Elastic Cloud Server instance")
		assert.Contains(t, result.ContentHTML, "cloudservers")
	})

	t.Run("removes navigation boilerplate", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav class="main-nav">
<ul>
<li><a href="/">Home</a></li>
<li><a href="/about">About</a></li>
<li><a href="/docs">Documentation</a></li>
</ul>
</nav>
<main>
<h1>Main Content</h1>
<p>This paragraph contains the actual content we want to keep around.</p>
</main>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "actual content")
		assert.NotContains(t, result.ContentHTML, "main-nav")
	})

	t.Run("falls back to full markup when nothing can be isolated", func(t *testing.T) {
		t.Parallel()

		html := `<div><span>tiny</span></div>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html)

		require.NoError(t, err)
		assert.NotEmpty(t, result.ContentHTML, "lenient extraction must not drop the page")
	})

	t.Run("empty input yields empty result", func(t *testing.T) {
		t.Parallel()

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract("")

		require.NoError(t, err)
		assert.Empty(t, result.Title)
		assert.Empty(t, result.ContentHTML)
	})
}
