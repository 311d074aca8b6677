package types

// MatchType records which search path produced a result.
type MatchType string

const (
	MatchVector  MatchType = "vector"
	MatchKeyword MatchType = "keyword"
	MatchHybrid  MatchType = "hybrid"
)

// SearchResult is one ranked hit from a search. Transient: produced per
// query, never persisted.
//
// Score semantics depend on the match type. Vector scores are cosine
// similarity in [-1, 1] (in practice [0, 1] for text embeddings).
// Keyword scores are raw occurrence counts. Hybrid scores are a weighted
// combination of the two after min-max normalization per result set, so
// they land in [0, 1].
type SearchResult struct {
	ID         string
	Score      float64
	Title      string
	Content    string
	Category   string
	Version    string
	DocumentID string
	Highlights []string
	MatchType  MatchType
}

// FromMatchMetadata fills the descriptive fields of a result from stored
// vector metadata.
func (r *SearchResult) FromMatchMetadata(meta Metadata) {
	r.Title = meta.GetString(FieldTitle)
	r.Content = meta.GetString(FieldText)
	r.Category = meta.GetString(FieldCategory)
	r.Version = meta.GetString(FieldVersion)
	r.DocumentID = meta.GetString(FieldDocumentID)
}
