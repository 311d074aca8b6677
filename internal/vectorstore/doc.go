// Package vectorstore persists and queries embedding vectors.
//
// The Store interface is the narrow contract the pipeline depends on:
// upsert, similarity query under a metadata filter, delete by id, delete
// by filter, and stats. The SQLite implementation keeps vectors as
// little-endian float32 blobs with metadata as JSON and computes cosine
// similarity in Go, which is plenty for a single-process knowledge base;
// swapping in a hosted index means implementing the same five
// operations.
//
// The store also exposes ScanChunks for keyword search, which reads
// chunk text and metadata without touching the similarity path.
package vectorstore
