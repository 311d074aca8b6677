package types

import "fmt"

// Vector is an embedding record owned by the vector store. The metadata
// carries the chunk metadata plus the original chunk text under
// FieldText, so highlights and snippets never need a second content
// lookup.
type Vector struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

// Validate checks the fields required for an upsert.
func (v *Vector) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("%w: vector id is required", ErrInvalidInput)
	}
	if len(v.Values) == 0 {
		return fmt.Errorf("%w: vector %s has no values", ErrInvalidInput, v.ID)
	}
	return nil
}

// FromChunk builds the vector record for an embedded chunk.
func FromChunk(chunk Chunk, values []float32) Vector {
	meta := chunk.Metadata.Clone()
	meta[FieldText] = String(chunk.Content)
	return Vector{
		ID:       chunk.ID,
		Values:   values,
		Metadata: meta,
	}
}

// StoreStats reports diagnostic counters from the vector store.
type StoreStats struct {
	VectorCount int64
	Dimensions  int
}
