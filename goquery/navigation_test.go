package goquery_test

import (
	"testing"

	"github.com/fwojciec/docdex"
	docdexquery "github.com/fwojciec/docdex/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T, opts ...docdexquery.NavOption) *docdexquery.NavigationParser {
	t.Helper()
	p, err := docdexquery.NewNavigationParser("https://docs.example.com", opts...)
	require.NoError(t, err)
	return p
}

func TestNavigationParser_ParsePages(t *testing.T) {
	t.Parallel()

	html := `<ul>
		<li class="level1"><a href="/en-us/usermanual/ecs/overview.html">Overview</a></li>
		<li class="level2"><a href="/en-us/usermanual/ecs/create.html">Creating an ECS</a></li>
		<li><a href="/en-us/api/ecs/list.html">Querying ECSs</a></li>
	</ul>`

	pages, err := newParser(t).ParsePages(html, "ecs")
	require.NoError(t, err)
	require.Len(t, pages, 3)

	assert.Equal(t, "https://docs.example.com/en-us/usermanual/ecs/overview.html", pages[0].URL)
	assert.Equal(t, "Overview", pages[0].Title)
	assert.Equal(t, "ecs", pages[0].Service)
	assert.Equal(t, "usermanual", pages[0].HandbookCode)
	assert.Equal(t, docdex.CategoryUserGuide, pages[0].Category)
	assert.Equal(t, 1, pages[0].Level)
	assert.Equal(t, docdex.PageStatusPending, pages[0].Status)
	assert.NotEmpty(t, pages[0].ID)

	assert.Equal(t, 2, pages[1].Level)

	assert.Equal(t, "api", pages[2].HandbookCode)
	assert.Equal(t, docdex.CategoryAPIReference, pages[2].Category)
	assert.Equal(t, 1, pages[2].Level, "missing level class defaults to 1")
}

func TestNavigationParser_SkipsPlaceholderLinks(t *testing.T) {
	t.Parallel()

	html := `<nav>
		<a href="">Empty</a>
		<a href="#">Hash</a>
		<a href="javascript:void(0)">Script</a>
		<a href="mailto:support@example.com">Mail</a>
		<a href="/en-us/usermanual/ecs/real.html">Real</a>
	</nav>`

	pages, err := newParser(t).ParsePages(html, "ecs")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Real", pages[0].Title)
}

func TestNavigationParser_DeduplicatesFirstSeen(t *testing.T) {
	t.Parallel()

	html := `<nav>
		<a href="/en-us/usermanual/ecs/a.html">First</a>
		<a href="/en-us/usermanual/ecs/b.html">Second</a>
		<a href="/en-us/usermanual/ecs/a.html">First again</a>
		<a href="/en-us/usermanual/ecs/a.html#section">First with fragment</a>
	</nav>`

	pages, err := newParser(t).ParsePages(html, "ecs")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "First", pages[0].Title, "first occurrence wins")
	assert.Equal(t, "Second", pages[1].Title)
}

func TestNavigationParser_CanonicalizesLocale(t *testing.T) {
	t.Parallel()

	html := `<nav>
		<a href="/zh-cn/usermanual/ecs/a.html">Chinese locale</a>
		<a href="/en-us/usermanual/ecs/a.html">English locale</a>
	</nav>`

	pages, err := newParser(t).ParsePages(html, "ecs")
	require.NoError(t, err)
	require.Len(t, pages, 1, "same page under two locales is one page")
	assert.Equal(t, "https://docs.example.com/en-us/usermanual/ecs/a.html", pages[0].URL)
}

func TestNavigationParser_CustomLocale(t *testing.T) {
	t.Parallel()

	html := `<a href="/en-us/usermanual/ecs/a.html">Page</a>`

	pages, err := newParser(t, docdexquery.WithLocale("de-de")).ParsePages(html, "ecs")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "https://docs.example.com/de-de/usermanual/ecs/a.html", pages[0].URL)
	assert.Equal(t, "usermanual", pages[0].HandbookCode)
}

func TestNavigationParser_SkipsExternalLinks(t *testing.T) {
	t.Parallel()

	html := `<nav>
		<a href="https://other.example.org/en-us/usermanual/ecs/a.html">External</a>
		<a href="/en-us/usermanual/ecs/local.html">Local</a>
	</nav>`

	pages, err := newParser(t).ParsePages(html, "ecs")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Local", pages[0].Title)
}

func TestNavigationParser_RelativeLinks(t *testing.T) {
	t.Parallel()

	p, err := docdexquery.NewNavigationParser("https://docs.example.com/en-us/usermanual/ecs/index.html")
	require.NoError(t, err)

	pages, err := p.ParsePages(`<a href="create.html">Create</a>`, "ecs")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "https://docs.example.com/en-us/usermanual/ecs/create.html", pages[0].URL)
}

func TestNavigationParser_NoLocaleSegment(t *testing.T) {
	t.Parallel()

	pages, err := newParser(t).ParsePages(`<a href="/api/ecs/list.html">List</a>`, "ecs")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "api", pages[0].HandbookCode)
}

func TestNavigationParser_EmptyInput(t *testing.T) {
	t.Parallel()

	pages, err := newParser(t).ParsePages("", "ecs")
	require.NoError(t, err)
	assert.Empty(t, pages)
}
