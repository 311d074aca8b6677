package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/docbase/docbase/internal/filter"
	"github.com/docbase/docbase/pkg/types"
)

// SQLiteStore implements Store and ChunkScanner on a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// WAL improves concurrent read behavior
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// NewSQLite creates a SQLite-backed vector store, applying migrations.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrStoreUnavailable, err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %s", types.ErrStoreUnavailable, err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Upsert writes all vectors in one transaction. Re-upserting an id
// overwrites the previous row, so the batch is safe to retry.
func (s *SQLiteStore) Upsert(ctx context.Context, vectors []types.Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	for i := range vectors {
		if err := vectors[i].Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin upsert: %s", types.ErrStoreRequest, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (id, document_id, chunk_index, content, embedding, dimension, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			chunk_index = excluded.chunk_index,
			content = excluded.content,
			embedding = excluded.embedding,
			dimension = excluded.dimension,
			metadata = excluded.metadata,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("%w: prepare upsert: %s", types.ErrStoreRequest, err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range vectors {
		v := &vectors[i]
		metaJSON, err := json.Marshal(v.Metadata)
		if err != nil {
			return fmt.Errorf("%w: marshal metadata for %s: %s", types.ErrStoreRequest, v.ID, err)
		}

		docID := v.Metadata.GetString(types.FieldDocumentID)
		chunkIndex := 0
		if idx, ok := v.Metadata.Get(types.FieldChunkIndex); ok {
			if n, isNum := idx.AsNumber(); isNum {
				chunkIndex = int(n)
			}
		}
		content := v.Metadata.GetString(types.FieldText)

		if _, err := stmt.ExecContext(ctx, v.ID, docID, chunkIndex, content,
			serializeVector(v.Values), len(v.Values), string(metaJSON)); err != nil {
			return fmt.Errorf("%w: upsert %s: %s", types.ErrStoreRequest, v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit upsert: %s", types.ErrStoreRequest, err)
	}
	return nil
}

// Query scans candidate rows under the metadata filter and ranks them by
// cosine similarity computed in Go.
func (s *SQLiteStore) Query(ctx context.Context, vector []float32, topK int, f filter.Filter) ([]Match, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: topK must be >= 1, got %d", types.ErrInvalidInput, topK)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query vector is empty", types.ErrInvalidInput)
	}
	if f.IsNone() {
		return []Match{}, nil
	}

	clause, args, err := filter.ToSQL(f)
	if err != nil {
		return nil, err
	}

	query := "SELECT id, embedding, metadata FROM vectors WHERE " + clause
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %s", types.ErrStoreRequest, err)
	}
	defer func() { _ = rows.Close() }()

	candidates := make([]Match, 0, 64)
	for rows.Next() {
		var id string
		var blob []byte
		var metaJSON string
		if err := rows.Scan(&id, &blob, &metaJSON); err != nil {
			return nil, fmt.Errorf("%w: scan: %s", types.ErrStoreRequest, err)
		}

		stored := deserializeVector(blob)
		if len(stored) != len(vector) {
			continue // dimension mismatch, different model
		}

		meta := types.Metadata{}
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("%w: metadata for %s: %s", types.ErrStoreRequest, id, err)
		}

		candidates = append(candidates, Match{
			ID:       id,
			Score:    cosineSimilarity(vector, stored),
			Metadata: meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrStoreRequest, err)
	}

	sortMatches(candidates)
	if topK < len(candidates) {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// DeleteByIDs removes vectors by id. Absent ids are ignored.
func (s *SQLiteStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM vectors WHERE id IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("%w: delete by ids: %s", types.ErrStoreRequest, err)
	}
	return nil
}

// DeleteByFilter removes every vector whose metadata matches the filter.
func (s *SQLiteStore) DeleteByFilter(ctx context.Context, f filter.Filter) error {
	if f.IsNone() {
		return nil
	}

	clause, args, err := filter.ToSQL(f)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM vectors WHERE "+clause, args...); err != nil {
		return fmt.Errorf("%w: delete by filter: %s", types.ErrStoreRequest, err)
	}
	return nil
}

// Stats reports the vector count and the dimensionality of the stored
// embeddings (0 when the store is empty).
func (s *SQLiteStore) Stats(ctx context.Context) (*types.StoreStats, error) {
	stats := &types.StoreStats{}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors").Scan(&stats.VectorCount); err != nil {
		return nil, fmt.Errorf("%w: stats: %s", types.ErrStoreRequest, err)
	}

	var dim sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(dimension) FROM vectors").Scan(&dim); err != nil {
		return nil, fmt.Errorf("%w: stats: %s", types.ErrStoreRequest, err)
	}
	if dim.Valid {
		stats.Dimensions = int(dim.Int64)
	}

	return stats, nil
}

// ScanChunks streams chunk text and metadata for rows matching the
// filter, ordered by id for deterministic iteration.
func (s *SQLiteStore) ScanChunks(ctx context.Context, f filter.Filter, fn func(id, text string, meta types.Metadata) error) error {
	if f.IsNone() {
		return nil
	}

	clause, args, err := filter.ToSQL(f)
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, content, metadata FROM vectors WHERE "+clause+" ORDER BY id", args...)
	if err != nil {
		return fmt.Errorf("%w: scan chunks: %s", types.ErrStoreRequest, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id, content, metaJSON string
		if err := rows.Scan(&id, &content, &metaJSON); err != nil {
			return fmt.Errorf("%w: scan: %s", types.ErrStoreRequest, err)
		}

		meta := types.Metadata{}
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return fmt.Errorf("%w: metadata for %s: %s", types.ErrStoreRequest, id, err)
		}

		if err := fn(id, content, meta); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %s", types.ErrStoreRequest, err)
	}
	return nil
}

// sortMatches orders by score descending with ties broken by id
// ascending, which keeps result ordering deterministic.
func sortMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
}

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
