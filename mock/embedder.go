package mock

import (
	"context"

	"github.com/fwojciec/docdex"
)

var _ docdex.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of docdex.Embedder.
type Embedder struct {
	EmbedFn       func(ctx context.Context, text string) ([]float32, error)
	EmbedChunksFn func(ctx context.Context, chunks []docdex.DocumentChunk, batchSize int) (map[string][]float32, error)
	DimensionFn   func() int
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

func (e *Embedder) EmbedChunks(ctx context.Context, chunks []docdex.DocumentChunk, batchSize int) (map[string][]float32, error) {
	return e.EmbedChunksFn(ctx, chunks, batchSize)
}

func (e *Embedder) Dimension() int {
	return e.DimensionFn()
}
