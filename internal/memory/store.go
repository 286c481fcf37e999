// Package memory is SamBot's long-term memory: user facts and daily summaries
// stored in SQLite with embedded vectors, retrieved by cosine similarity.
package memory

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sambot/internal/models"
)

// Store persists memory records per collection. Writes are serialized by
// database/sql; embedding failures degrade to zero vectors and never block a
// write or query.
type Store struct {
	db       *sql.DB
	embedder Embedder
}

// NewStore opens (or creates) the memory database at dbPath.
func NewStore(dbPath string, embedder Embedder) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id         TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		content    TEXT NOT NULL,
		metadata   TEXT,
		embedding  BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_memories_collection ON memories(collection);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize memory schema: %w", err)
	}

	return &Store{db: db, embedder: embedder}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores one record. An empty id generates a fresh one; an explicit id
// overwrites idempotently (debug/test operations — organic writes always pass
// a fresh id or none).
func (s *Store) Add(ctx context.Context, collection, text string, metadata map[string]string, id string) error {
	if id == "" {
		id = fmt.Sprintf("mem_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:4])
	}
	if metadata == nil {
		metadata = map[string]string{"timestamp": time.Now().Format(time.RFC3339)}
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	vec := s.embedder.Embed(ctx, text)

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO memories (id, collection, content, metadata, embedding) VALUES (?, ?, ?, ?, ?)",
		id, collection, text, string(metaJSON), encodeVector(vec),
	)
	if err != nil {
		return fmt.Errorf("failed to store memory: %w", err)
	}

	log.Printf("💾 [MEMORY] Memória salva -> %s (%s)", collection, id)
	return nil
}

// Query returns up to topK record texts from a collection, ordered by
// descending cosine similarity to the query. topK is clamped to the
// collection size; an empty collection returns an empty slice without error.
func (s *Store) Query(ctx context.Context, collection, query string, topK int) ([]string, error) {
	records, err := s.querySimilar(ctx, collection, query, topK)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(records))
	for _, r := range records {
		texts = append(texts, r.Text)
	}
	return texts, nil
}

func (s *Store) querySimilar(ctx context.Context, collection, query string, topK int) ([]models.MemoryRecord, error) {
	if topK <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content, metadata, embedding FROM memories WHERE collection = ?", collection)
	if err != nil {
		return nil, fmt.Errorf("memory query failed: %w", err)
	}
	defer rows.Close()

	queryVec := s.embedder.Embed(ctx, query)

	var results []models.MemoryRecord
	for rows.Next() {
		var (
			record   models.MemoryRecord
			metaJSON sql.NullString
			blob     []byte
		)
		if err := rows.Scan(&record.ID, &record.Text, &metaJSON, &blob); err != nil {
			continue
		}
		record.Collection = collection
		if metaJSON.Valid && metaJSON.String != "" {
			json.Unmarshal([]byte(metaJSON.String), &record.Metadata)
		}
		record.Similarity = cosineSimilarity(queryVec, decodeVector(blob))
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("memory scan failed: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// Count returns the number of records in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM memories WHERE collection = ?", collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("memory count failed: %w", err)
	}
	return n, nil
}

// encodeVector packs a float32 vector as a little-endian blob.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) []float32 {
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec
}

// cosineSimilarity tolerates mismatched lengths (compares the overlap) and
// returns 0 for zero-magnitude vectors.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
