package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawDoc(service, id string) *docdex.RawDocument {
	return &docdex.RawDocument{
		Meta: docdex.RawDocumentMeta{
			ID:            id,
			URL:           "https://docs.example.com/" + service + "/" + id,
			Service:       service,
			Status:        200,
			ContentType:   "text/html",
			ContentLength: 12,
			FetchedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		HTML: "<html>body</html>",
	}
}

func cleanDoc(service, id string) *docdex.CleanDocument {
	content := "# Overview\n\nSome content."
	return &docdex.CleanDocument{
		Meta: docdex.CleanDocumentMeta{
			ID:            id,
			URL:           "https://docs.example.com/" + service + "/" + id,
			Title:         "Overview",
			Service:       service,
			Category:      docdex.CategoryUserGuide,
			ContentLength: len(content),
			ContentHash:   "abc123",
			ProcessedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		Content: content,
	}
}

func TestRawStore_SaveAndLoad(t *testing.T) {
	t.Parallel()

	store := fs.NewRawStore(t.TempDir())
	ctx := context.Background()
	doc := rawDoc("ecs", "ecs_overview")

	assert.False(t, store.Exists(ctx, "ecs", "ecs_overview"))
	require.NoError(t, store.SaveDocument(ctx, doc))
	assert.True(t, store.Exists(ctx, "ecs", "ecs_overview"))

	loaded, err := store.LoadDocument(ctx, "ecs", "ecs_overview")
	require.NoError(t, err)
	assert.Equal(t, doc.HTML, loaded.HTML)
	assert.Equal(t, doc.Meta, loaded.Meta)
}

func TestRawStore_LoadMissing(t *testing.T) {
	t.Parallel()

	store := fs.NewRawStore(t.TempDir())
	_, err := store.LoadDocument(context.Background(), "ecs", "nope")
	require.Error(t, err)
	assert.Equal(t, docdex.ENOTFOUND, docdex.ErrorCode(err))
}

func TestRawStore_SaveInvalid(t *testing.T) {
	t.Parallel()

	store := fs.NewRawStore(t.TempDir())
	err := store.SaveDocument(context.Background(), &docdex.RawDocument{HTML: "<html></html>"})
	require.Error(t, err)
	assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
}

func TestRawStore_Listing(t *testing.T) {
	t.Parallel()

	store := fs.NewRawStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, rawDoc("obs", "obs_b")))
	require.NoError(t, store.SaveDocument(ctx, rawDoc("obs", "obs_a")))
	require.NoError(t, store.SaveDocument(ctx, rawDoc("ecs", "ecs_overview")))

	services, err := store.Services(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ecs", "obs"}, services)

	ids, err := store.ServiceDocuments(ctx, "obs")
	require.NoError(t, err)
	assert.Equal(t, []string{"obs_a", "obs_b"}, ids, "metadata files must not be listed as documents")

	total, err := store.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestRawStore_EmptyBase(t *testing.T) {
	t.Parallel()

	store := fs.NewRawStore(filepath.Join(t.TempDir(), "does-not-exist"))
	ctx := context.Background()

	services, err := store.Services(ctx)
	require.NoError(t, err)
	assert.Empty(t, services)

	total, err := store.TotalCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRawStore_WriteSummary(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewRawStore(base)
	summary := &docdex.StoreSummary{
		RunID:       "run-1",
		CompletedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Services:    2,
		Documents:   10,
		Failed:      1,
	}
	require.NoError(t, store.WriteSummary(context.Background(), summary))

	data, err := os.ReadFile(filepath.Join(base, fs.SummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"runId": "run-1"`)
}

func TestCleanStore_SaveAndLoad(t *testing.T) {
	t.Parallel()

	store := fs.NewCleanStore(t.TempDir())
	ctx := context.Background()
	doc := cleanDoc("ecs", "ecs_overview")

	require.NoError(t, store.SaveDocument(ctx, doc))
	assert.True(t, store.Exists(ctx, "ecs", "ecs_overview"))

	loaded, err := store.LoadDocument(ctx, "ecs", "ecs_overview")
	require.NoError(t, err)
	assert.Equal(t, doc.Content, loaded.Content)
	assert.Equal(t, doc.Meta, loaded.Meta)
}

func TestCleanStore_OverwriteKeepsSingleDocument(t *testing.T) {
	t.Parallel()

	store := fs.NewCleanStore(t.TempDir())
	ctx := context.Background()

	doc := cleanDoc("ecs", "ecs_overview")
	require.NoError(t, store.SaveDocument(ctx, doc))

	doc.Content = "# Overview\n\nUpdated content."
	doc.Meta.ContentHash = "def456"
	require.NoError(t, store.SaveDocument(ctx, doc))

	loaded, err := store.LoadDocument(ctx, "ecs", "ecs_overview")
	require.NoError(t, err)
	assert.Equal(t, "def456", loaded.Meta.ContentHash)
	assert.Contains(t, loaded.Content, "Updated")

	total, err := store.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
