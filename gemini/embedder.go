// Package gemini implements embedding generation using the Google Gemini API.
package gemini

import (
	"context"
	"math"

	"github.com/fwojciec/docdex"
	"google.golang.org/genai"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "gemini-embedding-001"

// DefaultDimension is the embedding dimension used when none is configured.
const DefaultDimension = 768

// maxEmbedTokens caps the text sent per embedding request. Longer text is
// truncated, not rejected.
const maxEmbedTokens = 512

// Ensure Embedder implements docdex.Embedder at compile time.
var _ docdex.Embedder = (*Embedder)(nil)

// Embedder implements docdex.Embedder using Gemini embedding models.
type Embedder struct {
	client    *genai.Client
	model     string
	dimension int
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithModel overrides the embedding model.
func WithModel(model string) EmbedderOption {
	return func(e *Embedder) {
		e.model = model
	}
}

// WithDimension overrides the embedding dimension. Reduced-dimension Gemini
// embeddings are not unit length, so vectors are L2-normalized after the call.
func WithDimension(dimension int) EmbedderOption {
	return func(e *Embedder) {
		e.dimension = dimension
	}
}

// NewEmbedder creates a new Embedder.
func NewEmbedder(client *genai.Client, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		client:    client,
		model:     DefaultModel,
		dimension: DefaultDimension,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dimension returns the configured embedding dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed returns the embedding vector for a single query text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, docdex.Errorf(docdex.EINVALID, "text required")
	}
	vectors, err := e.embedBatch(ctx, []string{text}, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedChunks embeds chunk contents in batches and returns vectors keyed by
// chunk ID.
func (e *Embedder) EmbedChunks(ctx context.Context, chunks []docdex.DocumentChunk, batchSize int) (map[string][]float32, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	embeddings := make(map[string][]float32, len(chunks))
	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}
		vectors, err := e.embedBatch(ctx, texts, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return nil, err
		}
		for i, chunk := range batch {
			embeddings[chunk.ID] = vectors[i]
		}
	}
	return embeddings, nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(docdex.TruncateTokens(text, maxEmbedTokens), "user")
	}

	dim := int32(e.dimension)
	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType:             taskType,
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, docdex.Errorf(docdex.EINTERNAL, "gemini returned nil result")
	}
	if len(result.Embeddings) != len(texts) {
		return nil, docdex.Errorf(docdex.EINTERNAL, "gemini returned %d embeddings for %d texts",
			len(result.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, embedding := range result.Embeddings {
		if len(embedding.Values) != e.dimension {
			return nil, docdex.Errorf(docdex.EINTERNAL, "gemini returned dimension %d, expected %d",
				len(embedding.Values), e.dimension)
		}
		vectors[i] = Normalize(embedding.Values)
	}
	return vectors, nil
}

// Normalize scales a vector to unit length. A zero vector is returned
// unchanged.
func Normalize(vector []float32) []float32 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vector
	}
	norm := math.Sqrt(sum)
	normalized := make([]float32, len(vector))
	for i, v := range vector {
		normalized[i] = float32(float64(v) / norm)
	}
	return normalized
}
