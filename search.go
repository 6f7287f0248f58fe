package docdex

import "context"

// Ensure Searcher implements SearchService at compile time.
var _ SearchService = (*Searcher)(nil)

// Searcher implements SearchService by embedding the query and delegating to
// a vector store.
type Searcher struct {
	embedder Embedder
	store    VectorStore
}

// NewSearcher creates a new Searcher.
func NewSearcher(embedder Embedder, store VectorStore) *Searcher {
	return &Searcher{embedder: embedder, store: store}
}

// Search embeds the query and returns the nearest chunks.
func (s *Searcher) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	if query == "" {
		return nil, Errorf(EINVALID, "query required")
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.store.Search(ctx, vector, opts)
}
