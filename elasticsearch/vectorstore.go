// Package elasticsearch provides an Elasticsearch-backed vector index for
// docdex. It targets the dense_vector kNN support of Elasticsearch 8.x.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/fwojciec/docdex"
)

// Compile-time interface verification.
var _ docdex.VectorStore = (*VectorStore)(nil)

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// VectorStore implements docdex.VectorStore on an Elasticsearch index with a
// dense_vector field.
type VectorStore struct {
	es        *elasticsearch.Client
	index     string
	dimension int
}

// NewVectorStore creates an Elasticsearch-backed vector store with a fixed
// embedding dimension.
func NewVectorStore(config Config, dimension int) (*VectorStore, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return &VectorStore{es: es, index: config.Index, dimension: dimension}, nil
}

// Ping checks if Elasticsearch is reachable.
func (s *VectorStore) Ping(ctx context.Context) bool {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

func (s *VectorStore) mapping() string {
	return fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"id": { "type": "keyword" },
				"service": { "type": "keyword" },
				"pageId": { "type": "keyword" },
				"url": { "type": "keyword" },
				"content": { "type": "text" },
				"headers": { "type": "keyword" },
				"position": { "type": "integer" },
				"tokenCount": { "type": "integer" },
				"embedding": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				}
			}
		}
	}`, s.dimension)
}

// Initialize creates the index with its mapping if it does not exist.
func (s *VectorStore) Initialize(ctx context.Context) error {
	res, err := s.es.Indices.Exists([]string{s.index}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = s.es.Indices.Create(
		s.index,
		s.es.Indices.Create.WithContext(ctx),
		s.es.Indices.Create.WithBody(strings.NewReader(s.mapping())),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}
	return nil
}

// Clear removes all vectors by deleting and recreating the index.
func (s *VectorStore) Clear(ctx context.Context) error {
	res, err := s.es.Indices.Delete(
		[]string{s.index},
		s.es.Indices.Delete.WithContext(ctx),
		s.es.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	res.Body.Close()
	return s.Initialize(ctx)
}

// indexedChunk is the document shape stored in Elasticsearch.
type indexedChunk struct {
	docdex.DocumentChunk
	Embedding []float32 `json:"embedding"`
}

// AddChunks bulk-indexes chunks with their embeddings, keyed by chunk ID.
func (s *VectorStore) AddChunks(ctx context.Context, chunks []docdex.DocumentChunk, embeddings map[string][]float32) error {
	if len(chunks) == 0 {
		return nil
	}

	var body bytes.Buffer
	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return err
		}
		embedding, ok := embeddings[chunk.ID]
		if !ok {
			return docdex.Errorf(docdex.EINVALID, "no embedding for chunk %s", chunk.ID)
		}
		if len(embedding) != s.dimension {
			return docdex.Errorf(docdex.EINVALID, "embedding for chunk %s has dimension %d, index expects %d",
				chunk.ID, len(embedding), s.dimension)
		}

		action, err := json.Marshal(map[string]any{"index": map[string]any{"_id": chunk.ID}})
		if err != nil {
			return err
		}
		doc, err := json.Marshal(indexedChunk{DocumentChunk: chunk, Embedding: embedding})
		if err != nil {
			return err
		}
		body.Write(action)
		body.WriteByte('\n')
		body.Write(doc)
		body.WriteByte('\n')
	}

	res, err := s.es.Bulk(
		bytes.NewReader(body.Bytes()),
		s.es.Bulk.WithContext(ctx),
		s.es.Bulk.WithIndex(s.index),
		s.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk index error: %s", res.String())
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Error *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("bulk index item error: %s: %s", op.Error.Type, op.Error.Reason)
				}
			}
		}
		return fmt.Errorf("bulk index reported errors")
	}
	return nil
}

// searchResponse represents the ES search response structure.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64      `json:"_score"`
			Source indexedChunk `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a kNN query over the embedding field and returns results ranked
// by descending cosine similarity.
func (s *VectorStore) Search(ctx context.Context, vector []float32, opts docdex.SearchOptions) ([]docdex.SearchResult, error) {
	if len(vector) != s.dimension {
		return nil, docdex.Errorf(docdex.EINVALID, "query vector has dimension %d, index expects %d",
			len(vector), s.dimension)
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = docdex.DefaultTopK
	}

	knn := map[string]any{
		"field":          "embedding",
		"query_vector":   vector,
		"k":              topK,
		"num_candidates": topK * 4,
	}
	if opts.Service != "" {
		knn["filter"] = map[string]any{
			"term": map[string]any{"service": opts.Service},
		}
	}
	searchQuery := map[string]any{
		"knn":     knn,
		"size":    topK,
		"_source": map[string]any{"excludes": []string{"embedding"}},
	}

	data, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]docdex.SearchResult, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		// ES maps cosine similarity to scores in (0, 1] as (1+cos)/2.
		cos := 2*hit.Score - 1
		results[i] = docdex.SearchResult{
			Chunk:    hit.Source.DocumentChunk,
			Score:    cos,
			Distance: 1 - cos,
		}
	}
	return results, nil
}

// Stats returns the current vector count and dimension.
func (s *VectorStore) Stats(ctx context.Context) (docdex.VectorStoreStats, error) {
	res, err := s.es.Count(
		s.es.Count.WithContext(ctx),
		s.es.Count.WithIndex(s.index),
	)
	if err != nil {
		return docdex.VectorStoreStats{}, fmt.Errorf("count failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return docdex.VectorStoreStats{}, fmt.Errorf("count error: %s", res.String())
	}

	var cr struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return docdex.VectorStoreStats{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return docdex.VectorStoreStats{Vectors: cr.Count, Dimension: s.dimension}, nil
}
