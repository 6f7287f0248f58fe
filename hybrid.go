package docdex

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// Default blend of vector and keyword scores.
const (
	DefaultVectorWeight  = 0.7
	DefaultKeywordWeight = 0.3
)

// Candidate pool for re-ranking: wider than the requested top-k so keyword
// scoring can promote lexical matches the embedding ranked low.
const (
	hybridCandidateFactor = 5
	hybridCandidateCap    = 100
)

// Ensure HybridSearcher implements SearchService at compile time.
var _ SearchService = (*HybridSearcher)(nil)

// HybridSearcher implements SearchService by blending vector similarity with
// lexical keyword scores. The query is thesaurus-expanded before embedding;
// a widened candidate set from the vector store is re-ranked by
// vectorWeight*cosine + keywordWeight*tfidf, with the keyword side scored
// against the original, unexpanded query.
type HybridSearcher struct {
	embedder Embedder
	store    VectorStore

	vectorWeight  float64
	keywordWeight float64
}

// HybridOption configures a HybridSearcher.
type HybridOption func(*HybridSearcher)

// WithWeights overrides the vector/keyword score blend.
func WithWeights(vector, keyword float64) HybridOption {
	return func(s *HybridSearcher) {
		s.vectorWeight = vector
		s.keywordWeight = keyword
	}
}

// NewHybridSearcher creates a hybrid searcher with the default 0.7/0.3
// vector/keyword blend.
func NewHybridSearcher(embedder Embedder, store VectorStore, opts ...HybridOption) *HybridSearcher {
	s := &HybridSearcher{
		embedder:      embedder,
		store:         store,
		vectorWeight:  DefaultVectorWeight,
		keywordWeight: DefaultKeywordWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the top chunks for the query ranked by combined score.
func (s *HybridSearcher) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	if query == "" {
		return nil, Errorf(EINVALID, "query required")
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := s.embedder.Embed(ctx, ExpandQuery(query))
	if err != nil {
		return nil, err
	}

	candidates := min(topK*hybridCandidateFactor, hybridCandidateCap)
	results, err := s.store.Search(ctx, vector, SearchOptions{TopK: candidates, Service: opts.Service})
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Content
	}
	keyword := keywordScores(query, texts)

	for i := range results {
		combined := s.vectorWeight*results[i].Score + s.keywordWeight*keyword[i]
		results[i].Score = combined
		results[i].Distance = 1 - combined
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

var wordRe = regexp.MustCompile(`\w+`)

func tokenizeWords(s string) []string {
	return wordRe.FindAllString(strings.ToLower(s), -1)
}

// keywordScores scores each document against the query with smoothed tf-idf
// over the candidate set, normalized so the best lexical match scores 1.
// Documents sharing no terms with the query score 0.
func keywordScores(query string, docs []string) []float64 {
	scores := make([]float64, len(docs))
	queryTokens := make(map[string]struct{})
	for _, t := range tokenizeWords(query) {
		queryTokens[t] = struct{}{}
	}
	if len(queryTokens) == 0 || len(docs) == 0 {
		return scores
	}

	// Document frequency of each query term within the candidate set.
	docTokens := make([][]string, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		docTokens[i] = tokenizeWords(doc)
		seen := make(map[string]struct{})
		for _, t := range docTokens[i] {
			if _, ok := queryTokens[t]; !ok {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	total := float64(len(docs))
	maxScore := 0.0
	for i, tokens := range docTokens {
		if len(tokens) == 0 {
			continue
		}
		counts := make(map[string]int)
		for _, t := range tokens {
			if _, ok := queryTokens[t]; ok {
				counts[t]++
			}
		}
		var score float64
		for t, n := range counts {
			tf := float64(n) / float64(len(tokens))
			idf := (total - float64(df[t]) + 0.5) / (float64(df[t]) + 0.5)
			if idf < 0.1 {
				idf = 0.1
			}
			score += tf * idf
		}
		scores[i] = score
		if score > maxScore {
			maxScore = score
		}
	}
	if maxScore == 0 {
		return scores
	}
	for i := range scores {
		scores[i] /= maxScore
	}
	return scores
}
