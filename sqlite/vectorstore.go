package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/fwojciec/docdex"
)

// Compile-time interface verification.
var _ docdex.VectorStore = (*VectorStore)(nil)

// VectorStore implements docdex.VectorStore on a single chunks table. Search
// is a brute-force cosine scan, which is fast enough for indexes in the tens
// of thousands of vectors.
type VectorStore struct {
	db        *DB
	dimension int
}

// NewVectorStore creates a vector store over db with a fixed embedding
// dimension.
func NewVectorStore(db *DB, dimension int) *VectorStore {
	return &VectorStore{db: db, dimension: dimension}
}

// Initialize opens the database and verifies the stored embedding dimension
// matches the configured one. A fresh index adopts the configured dimension.
func (s *VectorStore) Initialize(ctx context.Context) error {
	if err := s.db.Open(); err != nil {
		return err
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM index_meta WHERE key = 'dimension'`).Scan(&value)
	if err == sql.ErrNoRows {
		_, err = s.db.ExecContext(ctx, `INSERT INTO index_meta (key, value) VALUES ('dimension', ?)`,
			strconv.Itoa(s.dimension))
		return err
	}
	if err != nil {
		return err
	}

	stored, err := strconv.Atoi(value)
	if err != nil {
		return docdex.Errorf(docdex.EINTERNAL, "corrupt index dimension %q", value)
	}
	if stored != s.dimension {
		return docdex.Errorf(docdex.EINVALID, "index dimension is %d, configured %d", stored, s.dimension)
	}
	return nil
}

// Clear removes all vectors.
func (s *VectorStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks`)
	return err
}

// AddChunks stores chunks with their embeddings. An existing chunk ID is
// replaced and moves to the end of the insertion order.
func (s *VectorStore) AddChunks(ctx context.Context, chunks []docdex.DocumentChunk, embeddings map[string][]float32) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (id, service, page_id, url, content, headers, position, token_count, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

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
		headers, err := json.Marshal(chunk.Headers)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Service, chunk.PageID, chunk.URL,
			chunk.Content, string(headers), chunk.Position, chunk.TokenCount, encodeVector(embedding)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Search scans all stored vectors, ranks by descending cosine similarity, and
// returns the top results. Score ties keep insertion order.
func (s *VectorStore) Search(ctx context.Context, vector []float32, opts docdex.SearchOptions) ([]docdex.SearchResult, error) {
	if len(vector) != s.dimension {
		return nil, docdex.Errorf(docdex.EINVALID, "query vector has dimension %d, index expects %d",
			len(vector), s.dimension)
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = docdex.DefaultTopK
	}

	query := `SELECT id, service, page_id, url, content, headers, position, token_count, embedding FROM chunks`
	args := []any{}
	if opts.Service != "" {
		query += ` WHERE service = ?`
		args = append(args, opts.Service)
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []docdex.SearchResult
	for rows.Next() {
		var chunk docdex.DocumentChunk
		var headers string
		var blob []byte
		if err := rows.Scan(&chunk.ID, &chunk.Service, &chunk.PageID, &chunk.URL,
			&chunk.Content, &headers, &chunk.Position, &chunk.TokenCount, &blob); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(headers), &chunk.Headers); err != nil {
			return nil, err
		}
		embedding := decodeVector(blob)
		score := cosineSimilarity(vector, embedding)
		results = append(results, docdex.SearchResult{
			Chunk:    chunk,
			Score:    score,
			Distance: 1 - score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Stats returns the current vector count and dimension.
func (s *VectorStore) Stats(ctx context.Context) (docdex.VectorStoreStats, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return docdex.VectorStoreStats{}, err
	}
	return docdex.VectorStoreStats{Vectors: count, Dimension: s.dimension}, nil
}

// encodeVector packs a float32 vector into a little-endian blob.
func encodeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vector
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
