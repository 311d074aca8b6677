package types

import "errors"

// Pipeline error taxonomy. Callers classify failures with errors.Is.
var (
	// ErrInvalidInput indicates a caller error (empty text, bad topK).
	// Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a misconfiguration such as a chunk
	// overlap that is not smaller than the chunk size.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed is returned after the embedding provider has
	// exhausted all retries. It wraps the last underlying error.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrStoreUnavailable indicates the vector store cannot be reached.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrStoreRequest indicates the vector store rejected a request.
	ErrStoreRequest = errors.New("vector store request failed")

	// ErrIngestion wraps any failure during document ingestion. When it
	// is returned, no vectors for the document were upserted.
	ErrIngestion = errors.New("ingestion failed")

	// ErrSearchUnavailable is returned by semantic and hybrid search
	// when the vector path is down. Keyword search does not use it.
	ErrSearchUnavailable = errors.New("search unavailable")
)
