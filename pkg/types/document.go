package types

import (
	"fmt"
	"strings"
)

// Document is the unit of ingestion: a stable id, the full text, and
// caller-owned metadata (title, category, version, tags). Documents are
// immutable once chunked; updates go through delete + re-ingest.
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// Validate checks the fields required for ingestion.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("%w: document content is empty", ErrInvalidInput)
	}
	return nil
}

// Chunk is a bounded substring of a document, the unit of embedding. Its
// lifetime is tied to the parent document: created during ingestion and
// deleted en masse when the document is removed or re-ingested.
type Chunk struct {
	ID         string
	DocumentID string
	Index      int
	Content    string
	Metadata   Metadata
}

// ChunkID derives the deterministic chunk identifier. Re-chunking the
// same document with the same parameters yields the same ids, which is
// what makes re-ingestion idempotent at the store level.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s-chunk-%d", documentID, index)
}

// NewChunk builds a chunk for a document, copying the parent metadata and
// adding the documentId and chunkIndex fields.
func NewChunk(doc Document, index int, content string) Chunk {
	meta := doc.Metadata.Clone()
	meta[FieldDocumentID] = String(doc.ID)
	meta[FieldChunkIndex] = Number(float64(index))
	return Chunk{
		ID:         ChunkID(doc.ID, index),
		DocumentID: doc.ID,
		Index:      index,
		Content:    content,
		Metadata:   meta,
	}
}
