package mock

import (
	"context"

	"github.com/fwojciec/docdex"
)

var _ docdex.VectorStore = (*VectorStore)(nil)

// VectorStore is a mock implementation of docdex.VectorStore.
type VectorStore struct {
	InitializeFn func(ctx context.Context) error
	ClearFn      func(ctx context.Context) error
	AddChunksFn  func(ctx context.Context, chunks []docdex.DocumentChunk, embeddings map[string][]float32) error
	SearchFn     func(ctx context.Context, vector []float32, opts docdex.SearchOptions) ([]docdex.SearchResult, error)
	StatsFn      func(ctx context.Context) (docdex.VectorStoreStats, error)
}

func (s *VectorStore) Initialize(ctx context.Context) error {
	return s.InitializeFn(ctx)
}

func (s *VectorStore) Clear(ctx context.Context) error {
	return s.ClearFn(ctx)
}

func (s *VectorStore) AddChunks(ctx context.Context, chunks []docdex.DocumentChunk, embeddings map[string][]float32) error {
	return s.AddChunksFn(ctx, chunks, embeddings)
}

func (s *VectorStore) Search(ctx context.Context, vector []float32, opts docdex.SearchOptions) ([]docdex.SearchResult, error) {
	return s.SearchFn(ctx, vector, opts)
}

func (s *VectorStore) Stats(ctx context.Context) (docdex.VectorStoreStats, error) {
	return s.StatsFn(ctx)
}

var _ docdex.SearchService = (*SearchService)(nil)

// SearchService is a mock implementation of docdex.SearchService.
type SearchService struct {
	SearchFn func(ctx context.Context, query string, opts docdex.SearchOptions) ([]docdex.SearchResult, error)
}

func (s *SearchService) Search(ctx context.Context, query string, opts docdex.SearchOptions) ([]docdex.SearchResult, error) {
	return s.SearchFn(ctx, query, opts)
}
