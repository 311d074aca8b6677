package searcher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbase/docbase/internal/filter"
	"github.com/docbase/docbase/internal/vectorstore"
	"github.com/docbase/docbase/pkg/types"
)

// mockStore implements vectorstore.Store and vectorstore.ChunkScanner
// over in-memory fixtures.
type mockStore struct {
	matches    []vectorstore.Match
	chunks     []vectorstore.Match
	queryErr   error
	scanErr    error
	queryCalls atomic.Int32
}

func (m *mockStore) Upsert(ctx context.Context, vectors []types.Vector) error { return nil }

func (m *mockStore) Query(ctx context.Context, vector []float32, topK int, f filter.Filter) ([]vectorstore.Match, error) {
	m.queryCalls.Add(1)
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	out := m.matches
	if topK < len(out) {
		out = out[:topK]
	}
	return out, nil
}

func (m *mockStore) DeleteByIDs(ctx context.Context, ids []string) error       { return nil }
func (m *mockStore) DeleteByFilter(ctx context.Context, f filter.Filter) error { return nil }
func (m *mockStore) Stats(ctx context.Context) (*types.StoreStats, error) {
	return &types.StoreStats{}, nil
}
func (m *mockStore) Close() error { return nil }

func (m *mockStore) ScanChunks(ctx context.Context, f filter.Filter, fn func(id, text string, meta types.Metadata) error) error {
	if m.scanErr != nil {
		return m.scanErr
	}
	for _, c := range m.chunks {
		if !filter.Matches(c.Metadata, f) {
			continue
		}
		if err := fn(c.ID, c.Metadata.GetString(types.FieldText), c.Metadata); err != nil {
			return err
		}
	}
	return nil
}

// mockEmbedder returns a fixed vector for any input.
type mockEmbedder struct {
	embedErr error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimension() int   { return 3 }
func (m *mockEmbedder) Provider() string { return "mock" }
func (m *mockEmbedder) Model() string    { return "mock-model" }
func (m *mockEmbedder) Close() error     { return nil }

func chunkMatch(id, docID, text string, score float64) vectorstore.Match {
	return vectorstore.Match{
		ID:    id,
		Score: score,
		Metadata: types.Metadata{
			types.FieldDocumentID: types.String(docID),
			types.FieldText:       types.String(text),
		},
	}
}

func newTestEngine(t *testing.T, store *mockStore) *Engine {
	t.Helper()
	return NewEngine(store, store, &mockEmbedder{}, Config{})
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	engine := newTestEngine(t, &mockStore{})
	_, err := engine.Search(context.Background(), Request{Query: "   "})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestSearch_UnknownModeRejected(t *testing.T) {
	engine := newTestEngine(t, &mockStore{})
	_, err := engine.Search(context.Background(), Request{Query: "x", Mode: "fuzzy"})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestSemanticSearch(t *testing.T) {
	store := &mockStore{
		matches: []vectorstore.Match{
			chunkMatch("a", "doc-1", "the blueprint defines everything", 0.9),
			chunkMatch("b", "doc-2", "unrelated text", 0.5),
		},
	}
	engine := newTestEngine(t, store)

	results, err := engine.Search(context.Background(), Request{Query: "blueprint", Mode: ModeSemantic})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, types.MatchVector, results[0].MatchType)
	assert.Equal(t, 0.9, results[0].Score)
	assert.Contains(t, results[0].Highlights[0], "<mark>blueprint</mark>")
}

func TestKeywordSearch_ScoresByOccurrences(t *testing.T) {
	store := &mockStore{
		chunks: []vectorstore.Match{
			chunkMatch("a", "doc-1", "blueprint once", 0),
			chunkMatch("b", "doc-2", "blueprint here and blueprint there", 0),
			chunkMatch("c", "doc-3", "no hits at all", 0),
		},
	}
	engine := newTestEngine(t, store)

	results, err := engine.Search(context.Background(), Request{Query: "blueprint", Mode: ModeKeyword})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].ID)
	assert.Equal(t, 2.0, results[0].Score)
	assert.Equal(t, "a", results[1].ID)
	assert.Equal(t, types.MatchKeyword, results[0].MatchType)
}

func TestKeywordSearch_WorksWhenVectorPathFails(t *testing.T) {
	store := &mockStore{
		queryErr: errors.New("vector index corrupted"),
		chunks: []vectorstore.Match{
			chunkMatch("a", "doc-1", "blueprint text", 0),
		},
	}
	// Embedding also failing must not matter in keyword mode.
	engine := NewEngine(store, store, &mockEmbedder{embedErr: errors.New("provider down")}, Config{})

	results, err := engine.Search(context.Background(), Request{Query: "blueprint", Mode: ModeKeyword})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, int32(0), store.queryCalls.Load(), "keyword mode must not touch the vector path")
}

func TestHybridSearch_DedupAndCombine(t *testing.T) {
	// Two vector hits, one of which also matches by keyword, plus one
	// keyword-only hit: three distinct results.
	store := &mockStore{
		matches: []vectorstore.Match{
			chunkMatch("shared", "doc-1", "blueprint overlap text", 0.9),
			chunkMatch("vec-only", "doc-2", "semantically close", 0.7),
		},
		chunks: []vectorstore.Match{
			chunkMatch("shared", "doc-1", "blueprint overlap text", 0),
			chunkMatch("kw-only", "doc-3", "blueprint keyword text", 0),
		},
	}
	engine := newTestEngine(t, store)

	results, err := engine.Search(context.Background(), Request{Query: "blueprint", Mode: ModeHybrid, TopK: 10})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// The result present on both sides carries weight from both and
	// must rank first.
	assert.Equal(t, "shared", results[0].ID)
	assert.Equal(t, types.MatchHybrid, results[0].MatchType)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9, "max on both sides: 0.7*1.0 + 0.3*1.0")

	ids := []string{results[0].ID, results[1].ID, results[2].ID}
	assert.Contains(t, ids, "vec-only")
	assert.Contains(t, ids, "kw-only")
}

func TestHybridSearch_SingletonNormalizesToOne(t *testing.T) {
	store := &mockStore{
		matches: []vectorstore.Match{
			chunkMatch("only", "doc-1", "blueprint text", 0.42),
		},
	}
	engine := newTestEngine(t, store)

	results, err := engine.Search(context.Background(), Request{Query: "nokeywordhits", Mode: ModeHybrid})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, DefaultVectorWeight, results[0].Score, 1e-9)
}

func TestHybridSearch_StoreErrorWrapped(t *testing.T) {
	store := &mockStore{queryErr: errors.New("db locked")}
	engine := newTestEngine(t, store)

	_, err := engine.Search(context.Background(), Request{Query: "blueprint", Mode: ModeHybrid})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSearchUnavailable)
}

func TestSemanticSearch_EmbeddingErrorPropagates(t *testing.T) {
	store := &mockStore{}
	embedErr := types.ErrEmbeddingFailed
	engine := NewEngine(store, store, &mockEmbedder{embedErr: embedErr}, Config{})

	_, err := engine.Search(context.Background(), Request{Query: "blueprint", Mode: ModeSemantic})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrEmbeddingFailed)
}

func TestSearch_Deterministic(t *testing.T) {
	store := &mockStore{
		matches: []vectorstore.Match{
			chunkMatch("b", "doc-1", "blueprint text one", 0.8),
			chunkMatch("a", "doc-2", "blueprint text two", 0.8),
		},
	}
	engine := newTestEngine(t, store)

	req := Request{Query: "blueprint", Mode: ModeSemantic}
	first, err := engine.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := engine.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "a", first[0].ID, "equal scores break ties by id")
}

func TestSearch_TopKDefaultsAndCap(t *testing.T) {
	matches := make([]vectorstore.Match, 30)
	for i := range matches {
		matches[i] = chunkMatch(string(rune('a'+i%26))+string(rune('0'+i/26)), "doc", "text", float64(30-i)/30)
	}
	store := &mockStore{matches: matches}
	engine := newTestEngine(t, store)

	results, err := engine.Search(context.Background(), Request{Query: "query", Mode: ModeSemantic})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 30)
}

func TestSearch_CacheHitAndInvalidate(t *testing.T) {
	store := &mockStore{
		matches: []vectorstore.Match{
			chunkMatch("a", "doc-1", "blueprint text", 0.9),
		},
	}
	engine := NewEngine(store, store, &mockEmbedder{}, Config{CacheSize: 10, CacheTTL: time.Minute})

	req := Request{Query: "blueprint", Mode: ModeSemantic, UseCache: true}

	first, err := engine.Search(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first, 1)
	callsAfterFirst := store.queryCalls.Load()

	second, err := engine.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, store.queryCalls.Load(), "second call must be served from cache")

	engine.InvalidateCache()
	_, err = engine.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Greater(t, store.queryCalls.Load(), callsAfterFirst, "invalidation must force a fresh query")
}

func TestSearch_CacheIsolatesResults(t *testing.T) {
	store := &mockStore{
		matches: []vectorstore.Match{
			chunkMatch("a", "doc-1", "blueprint text", 0.9),
		},
	}
	engine := NewEngine(store, store, &mockEmbedder{}, Config{CacheSize: 10, CacheTTL: time.Minute})

	req := Request{Query: "blueprint", Mode: ModeSemantic, UseCache: true}
	first, err := engine.Search(context.Background(), req)
	require.NoError(t, err)

	// Mutating a returned result must not poison the cache.
	first[0].Content = "mutated"
	second, err := engine.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "blueprint text", second[0].Content)
}

func TestNormalizeScores(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, normalizeScores(nil))
	})

	t.Run("singleton is one", func(t *testing.T) {
		out := normalizeScores([]vectorstore.Match{{Score: 0.3}})
		assert.Equal(t, []float64{1.0}, out)
	})

	t.Run("all equal is one", func(t *testing.T) {
		out := normalizeScores([]vectorstore.Match{{Score: 0.5}, {Score: 0.5}})
		assert.Equal(t, []float64{1.0, 1.0}, out)
	})

	t.Run("min-max range", func(t *testing.T) {
		out := normalizeScores([]vectorstore.Match{{Score: 10}, {Score: 20}, {Score: 15}})
		assert.Equal(t, []float64{0, 1, 0.5}, out)
	})
}

func TestComputeQueryHash(t *testing.T) {
	base := Request{Query: "q", Mode: ModeHybrid, TopK: 10}
	assert.Equal(t, computeQueryHash(base), computeQueryHash(base))

	differentQuery := base
	differentQuery.Query = "other"
	assert.NotEqual(t, computeQueryHash(base), computeQueryHash(differentQuery))

	differentFilter := base
	differentFilter.Filters = filter.Request{Categories: []string{"guides"}}
	assert.NotEqual(t, computeQueryHash(base), computeQueryHash(differentFilter))
}
