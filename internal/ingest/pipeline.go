package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/docbase/docbase/internal/chunker"
	"github.com/docbase/docbase/internal/embedder"
	"github.com/docbase/docbase/internal/filter"
	"github.com/docbase/docbase/internal/vectorstore"
	"github.com/docbase/docbase/pkg/types"
)

// DefaultWorkers bounds concurrent embedding calls per document.
const DefaultWorkers = 6

// Options tunes the pipeline. Zero values take the defaults.
type Options struct {
	ChunkSize int
	Overlap   int
	Workers   int

	// Limiter throttles embedding calls across all documents. Nil means
	// no throttling.
	Limiter *rate.Limiter
}

// Result summarizes one completed ingestion.
type Result struct {
	JobID           string
	DocumentID      string
	ChunksProcessed int
	Duration        time.Duration
}

// Pipeline turns documents into stored vectors: chunk, embed, upsert.
// A document either lands fully or not at all; nothing is written to
// the store until every chunk has an embedding.
type Pipeline struct {
	store    vectorstore.Store
	embedder embedder.Embedder
	opts     Options
}

// NewPipeline creates an ingestion pipeline over the given store and
// embedder.
func NewPipeline(store vectorstore.Store, emb embedder.Embedder, opts Options) *Pipeline {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = chunker.DefaultChunkSize
	}
	if opts.Overlap < 0 || opts.Overlap >= opts.ChunkSize {
		opts.Overlap = chunker.DefaultOverlap
		if opts.Overlap >= opts.ChunkSize {
			opts.Overlap = opts.ChunkSize / 5
		}
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Pipeline{
		store:    store,
		embedder: emb,
		opts:     opts,
	}
}

// Ingest chunks a document, embeds every chunk concurrently, and writes
// all vectors in one upsert. Any chunk failure aborts the whole
// document with nothing written.
func (p *Pipeline) Ingest(ctx context.Context, doc types.Document) (*Result, error) {
	start := time.Now()

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	pieces, err := chunker.Chunk(doc.Content, p.opts.ChunkSize, p.opts.Overlap)
	if err != nil {
		return nil, err
	}
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%w: document %s produced no chunks", types.ErrInvalidInput, doc.ID)
	}

	chunks := make([]types.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = types.NewChunk(doc, i, piece)
	}

	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: document %s: %w", types.ErrIngestion, doc.ID, err)
	}

	if err := p.store.Upsert(ctx, vectors); err != nil {
		return nil, fmt.Errorf("%w: document %s: %w", types.ErrIngestion, doc.ID, err)
	}

	return &Result{
		JobID:           uuid.NewString(),
		DocumentID:      doc.ID,
		ChunksProcessed: len(chunks),
		Duration:        time.Since(start),
	}, nil
}

// Reingest replaces a document's stored chunks with a fresh ingestion.
// The old chunks are deleted first so a re-chunk that yields fewer
// pieces leaves no orphans behind.
func (p *Pipeline) Reingest(ctx context.Context, doc types.Document) (*Result, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if err := p.store.DeleteByFilter(ctx, filter.ByDocumentID(doc.ID)); err != nil {
		return nil, fmt.Errorf("%w: removing stale chunks for %s: %w", types.ErrIngestion, doc.ID, err)
	}
	return p.Ingest(ctx, doc)
}

// RemoveDocument deletes every stored chunk of a document. Removing an
// unknown document is a no-op.
func (p *Pipeline) RemoveDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("%w: document id is required", types.ErrInvalidInput)
	}
	if err := p.store.DeleteByFilter(ctx, filter.ByDocumentID(documentID)); err != nil {
		return fmt.Errorf("%w: removing document %s: %w", types.ErrIngestion, documentID, err)
	}
	return nil
}

// embedChunks embeds all chunks with bounded concurrency and returns
// the vectors in chunk order. The first failure cancels the rest.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []types.Chunk) ([]types.Vector, error) {
	vectors := make([]types.Vector, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for i, chunk := range chunks {
		g.Go(func() error {
			if p.opts.Limiter != nil {
				if err := p.opts.Limiter.Wait(gctx); err != nil {
					return err
				}
			}
			values, err := p.embedder.Embed(gctx, chunk.Content)
			if err != nil {
				return fmt.Errorf("chunk %s: %w", chunk.ID, err)
			}
			vectors[i] = types.FromChunk(chunk, values)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
