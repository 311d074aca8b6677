package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbase/docbase/internal/filter"
	"github.com/docbase/docbase/internal/vectorstore"
	"github.com/docbase/docbase/pkg/types"
)

// recordingStore captures upsert and delete calls.
type recordingStore struct {
	mu        sync.Mutex
	upserts   [][]types.Vector
	deletes   []filter.Filter
	upsertErr error
}

func (r *recordingStore) Upsert(ctx context.Context, vectors []types.Vector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserts = append(r.upserts, vectors)
	return nil
}

func (r *recordingStore) Query(ctx context.Context, vector []float32, topK int, f filter.Filter) ([]vectorstore.Match, error) {
	return nil, nil
}

func (r *recordingStore) DeleteByIDs(ctx context.Context, ids []string) error { return nil }

func (r *recordingStore) DeleteByFilter(ctx context.Context, f filter.Filter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, f)
	return nil
}

func (r *recordingStore) Stats(ctx context.Context) (*types.StoreStats, error) {
	return &types.StoreStats{}, nil
}

func (r *recordingStore) Close() error { return nil }

func (r *recordingStore) upsertCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.upserts)
}

// countingEmbedder tracks concurrency and can fail selectively.
type countingEmbedder struct {
	failOn      string
	calls       atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	cur := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		max := c.maxInFlight.Load()
		if cur <= max || c.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}

	if c.failOn != "" && strings.Contains(text, c.failOn) {
		return nil, types.ErrEmbeddingFailed
	}
	return []float32{float32(len(text)), 1}, nil
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := c.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *countingEmbedder) Dimension() int   { return 2 }
func (c *countingEmbedder) Provider() string { return "counting" }
func (c *countingEmbedder) Model() string    { return "counting-model" }
func (c *countingEmbedder) Close() error     { return nil }

func testDocument(id string, paragraphs int) types.Document {
	var sb strings.Builder
	for i := 0; i < paragraphs; i++ {
		sb.WriteString(strings.Repeat("Documentation sentence goes here. ", 20))
		sb.WriteString("\n\n")
	}
	return types.Document{
		ID:      id,
		Content: sb.String(),
		Metadata: types.Metadata{
			types.FieldTitle: types.String("Test Doc"),
		},
	}
}

func TestIngest_HappyPath(t *testing.T) {
	store := &recordingStore{}
	emb := &countingEmbedder{}
	p := NewPipeline(store, emb, Options{ChunkSize: 500, Overlap: 100})

	result, err := p.Ingest(context.Background(), testDocument("doc-1", 3))
	require.NoError(t, err)

	assert.NotEmpty(t, result.JobID)
	assert.Equal(t, "doc-1", result.DocumentID)
	assert.Greater(t, result.ChunksProcessed, 1)
	assert.Equal(t, 1, store.upsertCount(), "all vectors must land in one upsert")

	vectors := store.upserts[0]
	require.Len(t, vectors, result.ChunksProcessed)
	for i, v := range vectors {
		assert.Equal(t, types.ChunkID("doc-1", i), v.ID, "vectors must be in chunk order")
		assert.Equal(t, "doc-1", v.Metadata.GetString(types.FieldDocumentID))
		assert.NotEmpty(t, v.Metadata.GetString(types.FieldText))
		assert.Equal(t, "Test Doc", v.Metadata.GetString(types.FieldTitle))
	}
}

func TestIngest_ValidatesDocument(t *testing.T) {
	p := NewPipeline(&recordingStore{}, &countingEmbedder{}, Options{})

	_, err := p.Ingest(context.Background(), types.Document{Content: "x"})
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = p.Ingest(context.Background(), types.Document{ID: "d", Content: "  "})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestIngest_AllOrNothing(t *testing.T) {
	store := &recordingStore{}
	// The marker lands in the final paragraph so earlier chunks embed
	// successfully before the failure.
	doc := testDocument("doc-1", 2)
	doc.Content += "FAILMARKER trailing text"

	emb := &countingEmbedder{failOn: "FAILMARKER"}
	p := NewPipeline(store, emb, Options{ChunkSize: 500, Overlap: 100})

	_, err := p.Ingest(context.Background(), doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrIngestion)
	assert.ErrorIs(t, err, types.ErrEmbeddingFailed)
	assert.Equal(t, 0, store.upsertCount(), "a failed chunk must leave the store untouched")
}

func TestIngest_UpsertFailureWrapped(t *testing.T) {
	store := &recordingStore{upsertErr: errors.New("disk full")}
	p := NewPipeline(store, &countingEmbedder{}, Options{})

	_, err := p.Ingest(context.Background(), testDocument("doc-1", 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrIngestion)
}

func TestIngest_BoundedConcurrency(t *testing.T) {
	store := &recordingStore{}
	emb := &countingEmbedder{}
	p := NewPipeline(store, emb, Options{ChunkSize: 300, Overlap: 50, Workers: 2})

	result, err := p.Ingest(context.Background(), testDocument("doc-1", 6))
	require.NoError(t, err)
	require.Greater(t, result.ChunksProcessed, 2)

	assert.LessOrEqual(t, emb.maxInFlight.Load(), int32(2), "worker limit must bound concurrent embeds")
	assert.Equal(t, int32(result.ChunksProcessed), emb.calls.Load())
}

func TestReingest_DeletesBeforeIngest(t *testing.T) {
	store := &recordingStore{}
	p := NewPipeline(store, &countingEmbedder{}, Options{})

	_, err := p.Reingest(context.Background(), testDocument("doc-1", 1))
	require.NoError(t, err)

	require.Len(t, store.deletes, 1)
	assert.Equal(t, filter.ByDocumentID("doc-1"), store.deletes[0])
	assert.Equal(t, 1, store.upsertCount())
}

func TestRemoveDocument(t *testing.T) {
	store := &recordingStore{}
	p := NewPipeline(store, &countingEmbedder{}, Options{})

	require.NoError(t, p.RemoveDocument(context.Background(), "doc-1"))
	require.Len(t, store.deletes, 1)
	assert.Equal(t, filter.ByDocumentID("doc-1"), store.deletes[0])

	err := p.RemoveDocument(context.Background(), "")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestNewPipeline_Defaults(t *testing.T) {
	p := NewPipeline(&recordingStore{}, &countingEmbedder{}, Options{})
	assert.Equal(t, DefaultWorkers, p.opts.Workers)
	assert.Greater(t, p.opts.ChunkSize, 0)
	assert.Less(t, p.opts.Overlap, p.opts.ChunkSize)
}
