// Package embedder converts text into fixed-length embedding vectors.
//
// The Embedder interface is implemented by HTTP providers (OpenAI, Jina)
// and by a deterministic local provider for offline use and tests.
// Providers retry transient failures with linear backoff (base delay
// multiplied by the attempt number) and report the exhausted-retries
// case as types.ErrEmbeddingFailed wrapping the last underlying error.
// Empty input is a caller error and is never retried.
//
// Provider selection follows the environment:
//
//  1. DOCBASE_EMBEDDING_PROVIDER, if set (openai, jina, local)
//  2. OPENAI_API_KEY present -> OpenAI
//  3. JINA_API_KEY present -> Jina
//  4. otherwise the local provider (offline mode)
//
// An optional LRU cache keyed by content hash avoids re-embedding
// unchanged chunk text across re-ingestion runs.
package embedder
