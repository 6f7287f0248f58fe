package docdex

import (
	"context"
	"fmt"
)

// DocumentChunk is a retrieval-sized slice of a clean document, tagged with
// the heading context active at its location.
type DocumentChunk struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	Service    string   `json:"service"`
	PageID     string   `json:"pageId"`
	Headers    []string `json:"headers,omitempty"` // heading path, outermost to innermost
	URL        string   `json:"url"`
	Position   int      `json:"position"` // zero-based, per-document monotonic
	TokenCount int      `json:"tokenCount"`
}

// ChunkID builds the canonical chunk identifier.
func ChunkID(service, pageID string, position int) string {
	return fmt.Sprintf("%s_%s_chunk%d", service, pageID, position)
}

// Validate returns an error if the chunk contains invalid fields.
func (c *DocumentChunk) Validate() error {
	if c.Service == "" {
		return Errorf(EINVALID, "chunk service required")
	}
	if c.PageID == "" {
		return Errorf(EINVALID, "chunk page ID required")
	}
	if c.Content == "" {
		return Errorf(EINVALID, "chunk content required")
	}
	return nil
}

// Embedder generates embedding vectors for text. Vectors have a fixed
// dimension per model configuration and are L2-normalized.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	// Text beyond the first 512 tokens is not represented in the vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedChunks embeds chunks in batches for throughput and returns
	// vectors keyed by chunk ID.
	EmbedChunks(ctx context.Context, chunks []DocumentChunk, batchSize int) (map[string][]float32, error)

	// Dimension returns the configured embedding dimension.
	Dimension() int
}

// DefaultTopK is the result count used when SearchOptions.TopK is unset.
const DefaultTopK = 10

// SearchOptions configures a vector search.
type SearchOptions struct {
	// TopK is the maximum number of results to return.
	TopK int

	// Service, when non-empty, restricts results to a single service
	// before ranking.
	Service string
}

// SearchResult is one ranked vector-search match.
type SearchResult struct {
	Chunk    DocumentChunk `json:"chunk"`
	Score    float64       `json:"score"`    // cosine similarity, descending
	Distance float64       `json:"distance"` // cosine distance, ascending
}

// VectorStoreStats describes the current state of a vector index.
type VectorStoreStats struct {
	Vectors   int `json:"vectors"`
	Dimension int `json:"dimension"`
}

// VectorStore persists embedding vectors and serves nearest-neighbor search.
// The store owns the EmbeddingVector lifecycle and is the only entity queried
// by external collaborators. Embedding dimension must not vary within one
// index.
type VectorStore interface {
	// Initialize opens or creates the index.
	Initialize(ctx context.Context) error

	// Clear removes all vectors.
	Clear(ctx context.Context) error

	// AddChunks stores chunks with their embeddings, keyed by chunk ID.
	// Returns EINVALID if an embedding's dimension does not match the index.
	AddChunks(ctx context.Context, chunks []DocumentChunk, embeddings map[string][]float32) error

	// Search returns results ranked by descending cosine similarity.
	// Ties in score are broken by insertion order.
	Search(ctx context.Context, vector []float32, opts SearchOptions) ([]SearchResult, error)

	// Stats returns the current vector count and dimension.
	Stats(ctx context.Context) (VectorStoreStats, error)
}

// SearchService answers natural-language queries against a vector index.
type SearchService interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
}
