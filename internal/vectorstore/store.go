package vectorstore

import (
	"context"

	"github.com/docbase/docbase/internal/filter"
	"github.com/docbase/docbase/pkg/types"
)

// Store is the vector index contract. All operations are safe to retry:
// upserts overwrite by id, deletes are no-ops for absent ids, and
// queries have no side effects.
type Store interface {
	// Upsert inserts or overwrites vectors by id in one batch.
	Upsert(ctx context.Context, vectors []types.Vector) error

	// Query returns up to topK matches for the query vector, ordered by
	// descending similarity with ties broken by ascending id. topK must
	// be at least 1.
	Query(ctx context.Context, vector []float32, topK int, f filter.Filter) ([]Match, error)

	// DeleteByIDs removes vectors by id.
	DeleteByIDs(ctx context.Context, ids []string) error

	// DeleteByFilter removes every vector whose metadata matches the
	// filter. Removing a document's chunks goes through a documentId
	// equality filter.
	DeleteByFilter(ctx context.Context, f filter.Filter) error

	// Stats reports diagnostic counters.
	Stats(ctx context.Context) (*types.StoreStats, error)

	// Close releases the underlying store handle.
	Close() error
}

// Match is a single similarity hit: the vector id, its cosine similarity
// to the query, and the stored metadata (which includes the chunk text).
type Match struct {
	ID       string
	Score    float64
	Metadata types.Metadata
}

// ChunkScanner streams stored chunk text for keyword scoring. It shares
// the store's data but not its similarity path, so keyword search keeps
// working when vector querying is unavailable.
type ChunkScanner interface {
	// ScanChunks invokes fn for every stored chunk whose metadata
	// matches the filter. Scanning stops at the first error from fn.
	ScanChunks(ctx context.Context, f filter.Filter, fn func(id, text string, meta types.Metadata) error) error
}
