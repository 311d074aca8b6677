// Package ingest turns documents into stored vectors.
//
// The pipeline has three stages per document. First the content is
// chunked with overlap. Then every chunk is embedded, with bounded
// concurrency and an optional shared rate limiter over the embedding
// provider. Finally all vectors land in the store in a single upsert.
//
// Ingestion is all-or-nothing at the document level. The upsert only
// happens once every chunk has an embedding, so a provider failure
// partway through leaves the store untouched. Chunk ids are derived
// deterministically from the document id and chunk index, which makes
// re-ingesting the same content idempotent; Reingest additionally
// deletes the previous chunk set first so a shorter re-chunk leaves no
// orphans.
package ingest
