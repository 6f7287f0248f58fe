package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, dimension int) *sqlite.VectorStore {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	store := sqlite.NewVectorStore(db, dimension)
	require.NoError(t, store.Initialize(context.Background()))
	t.Cleanup(func() { db.Close() })
	return store
}

func chunk(service, pageID string, position int) docdex.DocumentChunk {
	return docdex.DocumentChunk{
		ID:       docdex.ChunkID(service, pageID, position),
		Content:  "content of " + pageID,
		Service:  service,
		PageID:   pageID,
		URL:      "https://docs.example.com/" + service + "/" + pageID,
		Position: position,
		Headers:  []string{"Title"},
	}
}

func TestVectorStore_AddAndSearch(t *testing.T) {
	t.Parallel()

	store := newStore(t, 3)
	ctx := context.Background()

	chunks := []docdex.DocumentChunk{
		chunk("ecs", "ecs_overview", 0),
		chunk("obs", "obs_buckets", 0),
	}
	embeddings := map[string][]float32{
		chunks[0].ID: {1, 0, 0},
		chunks[1].ID: {0, 1, 0},
	}
	require.NoError(t, store.AddChunks(ctx, chunks, embeddings))

	results, err := store.Search(ctx, []float32{0.9, 0.1, 0}, docdex.SearchOptions{TopK: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, chunks[0].ID, results[0].Chunk.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.InDelta(t, 1-results[0].Score, results[0].Distance, 1e-9)
	assert.Equal(t, []string{"Title"}, results[0].Chunk.Headers)
}

func TestVectorStore_SearchServiceFilter(t *testing.T) {
	t.Parallel()

	store := newStore(t, 3)
	ctx := context.Background()

	chunks := []docdex.DocumentChunk{
		chunk("ecs", "ecs_overview", 0),
		chunk("obs", "obs_buckets", 0),
	}
	embeddings := map[string][]float32{
		chunks[0].ID: {1, 0, 0},
		chunks[1].ID: {1, 0, 0},
	}
	require.NoError(t, store.AddChunks(ctx, chunks, embeddings))

	results, err := store.Search(ctx, []float32{1, 0, 0}, docdex.SearchOptions{TopK: 10, Service: "obs"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "obs", results[0].Chunk.Service)
}

func TestVectorStore_SearchTieBreaksByInsertionOrder(t *testing.T) {
	t.Parallel()

	store := newStore(t, 2)
	ctx := context.Background()

	first := chunk("ecs", "first", 0)
	second := chunk("ecs", "second", 0)
	embeddings := map[string][]float32{
		first.ID:  {0, 1},
		second.ID: {0, 1},
	}
	require.NoError(t, store.AddChunks(ctx, []docdex.DocumentChunk{first, second}, embeddings))

	results, err := store.Search(ctx, []float32{0, 1}, docdex.SearchOptions{TopK: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, first.ID, results[0].Chunk.ID)
	assert.Equal(t, second.ID, results[1].Chunk.ID)
}

func TestVectorStore_AddChunksReplacesByID(t *testing.T) {
	t.Parallel()

	store := newStore(t, 2)
	ctx := context.Background()

	c := chunk("ecs", "ecs_overview", 0)
	require.NoError(t, store.AddChunks(ctx, []docdex.DocumentChunk{c}, map[string][]float32{c.ID: {1, 0}}))

	c.Content = "updated content"
	require.NoError(t, store.AddChunks(ctx, []docdex.DocumentChunk{c}, map[string][]float32{c.ID: {0, 1}}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Vectors)

	results, err := store.Search(ctx, []float32{0, 1}, docdex.SearchOptions{TopK: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "updated content", results[0].Chunk.Content)
}

func TestVectorStore_DimensionMismatch(t *testing.T) {
	t.Parallel()

	store := newStore(t, 3)
	ctx := context.Background()

	c := chunk("ecs", "ecs_overview", 0)
	err := store.AddChunks(ctx, []docdex.DocumentChunk{c}, map[string][]float32{c.ID: {1, 0}})
	require.Error(t, err)
	assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))

	_, err = store.Search(ctx, []float32{1, 0}, docdex.SearchOptions{})
	require.Error(t, err)
	assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
}

func TestVectorStore_MissingEmbedding(t *testing.T) {
	t.Parallel()

	store := newStore(t, 2)
	c := chunk("ecs", "ecs_overview", 0)
	err := store.AddChunks(context.Background(), []docdex.DocumentChunk{c}, map[string][]float32{})
	require.Error(t, err)
	assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
}

func TestVectorStore_Clear(t *testing.T) {
	t.Parallel()

	store := newStore(t, 2)
	ctx := context.Background()

	c := chunk("ecs", "ecs_overview", 0)
	require.NoError(t, store.AddChunks(ctx, []docdex.DocumentChunk{c}, map[string][]float32{c.ID: {1, 0}}))
	require.NoError(t, store.Clear(ctx))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Vectors)
	assert.Equal(t, 2, stats.Dimension)
}

func TestVectorStore_InitializeDimensionConflict(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/index.db"

	db := sqlite.NewDB(path)
	store := sqlite.NewVectorStore(db, 3)
	require.NoError(t, store.Initialize(context.Background()))
	require.NoError(t, db.Close())

	db2 := sqlite.NewDB(path)
	store2 := sqlite.NewVectorStore(db2, 4)
	err := store2.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
	require.NoError(t, db2.Close())
}
