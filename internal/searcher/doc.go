// Package searcher implements hybrid search over the documentation
// knowledge base, combining vector similarity with keyword occurrence
// scoring.
//
// Three modes are supported:
//   - semantic: embed the query and rank by cosine similarity
//   - keyword: whole-word occurrence counts over stored chunk text,
//     no vector store query involved
//   - hybrid: run both concurrently, min-max normalize each score set,
//     and combine as vectorWeight*v + keywordWeight*k (0.7/0.3 by
//     default)
//
// Results are deduplicated by id, sorted by score descending with ties
// broken by id ascending, and decorated with highlight fragments.
// Ordering is fully deterministic for a given store state.
//
// If the vector store is unavailable, semantic and hybrid searches fail
// with types.ErrSearchUnavailable; keyword mode keeps working because it
// only scans stored chunk text. Falling back to keyword mode is the
// caller's decision, never an implicit substitution.
package searcher
