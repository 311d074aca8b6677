// Package chunker splits document text into bounded, overlapping
// segments suitable for embedding.
//
// Chunk is a pure function: identical inputs always produce identical
// output, and there is no shared state between calls. Splits prefer
// paragraph boundaries, then sentence ends, then whitespace, and fall
// back to a hard cut at the size limit when a single run of text has no
// boundary at all.
//
// The cursor advances by the actual chunk length minus the overlap after
// each chunk, clamped to at least one character. The clamp matters:
// boundary correction can make a chunk shorter than size-overlap, and
// without it a pathological size/overlap pair would loop forever.
package chunker
