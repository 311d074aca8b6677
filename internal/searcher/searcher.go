package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/docbase/docbase/internal/embedder"
	"github.com/docbase/docbase/internal/filter"
	"github.com/docbase/docbase/internal/vectorstore"
	"github.com/docbase/docbase/pkg/types"
)

// Mode selects the search strategy.
type Mode string

const (
	ModeSemantic Mode = "semantic"
	ModeKeyword  Mode = "keyword"
	ModeHybrid   Mode = "hybrid"
)

// Default hybrid score weights.
const (
	DefaultVectorWeight  = 0.7
	DefaultKeywordWeight = 0.3
)

// Config tunes the search engine.
type Config struct {
	VectorWeight  float64
	KeywordWeight float64
	CacheSize     int
	CacheTTL      time.Duration
}

// Request contains parameters for one search call.
type Request struct {
	Query    string
	Mode     Mode
	TopK     int
	Filters  filter.Request
	UseCache bool
}

// Engine coordinates query embedding, vector querying, keyword scoring,
// ranking, and highlighting. It holds no per-search state; a query cache
// with TTL is the only thing carried between calls.
type Engine struct {
	store    vectorstore.Store
	scanner  vectorstore.ChunkScanner
	embedder embedder.Embedder

	vectorWeight  float64
	keywordWeight float64
	cacheTTL      time.Duration

	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.Mutex
}

type cacheEntry struct {
	results   []types.SearchResult
	expiresAt time.Time
}

// NewEngine creates a search engine over the given store and embedder.
// scanner is the chunk source for keyword scoring; the SQLite store
// implements both interfaces.
func NewEngine(store vectorstore.Store, scanner vectorstore.ChunkScanner, emb embedder.Embedder, cfg Config) *Engine {
	if cfg.VectorWeight <= 0 && cfg.KeywordWeight <= 0 {
		cfg.VectorWeight = DefaultVectorWeight
		cfg.KeywordWeight = DefaultKeywordWeight
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1000
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}

	cache, err := lru.New[[32]byte, *cacheEntry](cfg.CacheSize)
	if err != nil {
		cache, _ = lru.New[[32]byte, *cacheEntry](1000)
	}

	return &Engine{
		store:         store,
		scanner:       scanner,
		embedder:      emb,
		vectorWeight:  cfg.VectorWeight,
		keywordWeight: cfg.KeywordWeight,
		cacheTTL:      cfg.CacheTTL,
		cache:         cache,
	}
}

// Search runs one search call. The result list is sorted by score
// descending with ties broken by id ascending.
func (e *Engine) Search(ctx context.Context, req Request) ([]types.SearchResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", types.ErrInvalidInput)
	}
	if req.TopK <= 0 {
		req.TopK = 10
	}
	if req.TopK > 100 {
		req.TopK = 100
	}
	if req.Mode == "" {
		req.Mode = ModeHybrid
	}

	if req.UseCache {
		if cached, ok := e.checkCache(req); ok {
			return cached, nil
		}
	}

	f := req.Filters.Build()

	var results []types.SearchResult
	var err error
	switch req.Mode {
	case ModeSemantic:
		results, err = e.semanticSearch(ctx, req, f)
	case ModeKeyword:
		results, err = e.keywordSearch(ctx, req, f)
	case ModeHybrid:
		results, err = e.hybridSearch(ctx, req, f)
	default:
		return nil, fmt.Errorf("%w: unsupported search mode %q", types.ErrInvalidInput, req.Mode)
	}
	if err != nil {
		return nil, err
	}

	if req.UseCache && len(results) > 0 {
		e.storeInCache(req, results)
	}
	return results, nil
}

// InvalidateCache drops all cached search responses. Called after any
// ingest or delete so stale hits never outlive the store state.
func (e *Engine) InvalidateCache() {
	e.cacheMu.Lock()
	e.cache.Purge()
	e.cacheMu.Unlock()
}

// semanticSearch embeds the query and ranks by cosine similarity.
func (e *Engine) semanticSearch(ctx context.Context, req Request, f filter.Filter) ([]types.SearchResult, error) {
	matches, err := e.vectorQuery(ctx, req.Query, req.TopK, f)
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, e.matchToResult(m, req.Query, types.MatchVector))
	}
	sortResults(results)
	return results, nil
}

// keywordSearch scores stored chunk text by whole-word occurrence count.
// It never touches the vector query path.
func (e *Engine) keywordSearch(ctx context.Context, req Request, f filter.Filter) ([]types.SearchResult, error) {
	scored, err := e.keywordScan(ctx, req.Query, f)
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(scored))
	for _, m := range scored {
		results = append(results, e.matchToResult(m, req.Query, types.MatchKeyword))
	}
	sortResults(results)
	if len(results) > req.TopK {
		results = results[:req.TopK]
	}
	return results, nil
}

// subResult carries the outcome of one concurrent sub-search.
type subResult struct {
	matches []vectorstore.Match
	err     error
}

// hybridSearch runs the vector and keyword sub-searches concurrently,
// normalizes both score sets, and combines them per id.
func (e *Engine) hybridSearch(ctx context.Context, req Request, f filter.Filter) ([]types.SearchResult, error) {
	// Over-fetch both sides so the combined ranking has enough
	// candidates to dedup from.
	fetch := req.TopK * 2

	vectorChan := make(chan subResult, 1)
	keywordChan := make(chan subResult, 1)

	go func() {
		matches, err := e.vectorQuery(ctx, req.Query, fetch, f)
		select {
		case vectorChan <- subResult{matches: matches, err: err}:
		case <-ctx.Done():
		}
	}()
	go func() {
		matches, err := e.keywordScan(ctx, req.Query, f)
		select {
		case keywordChan <- subResult{matches: matches, err: err}:
		case <-ctx.Done():
		}
	}()

	var vectorRes, keywordRes subResult
	var vectorDone, keywordDone bool
	for !vectorDone || !keywordDone {
		select {
		case vectorRes = <-vectorChan:
			vectorDone = true
		case keywordRes = <-keywordChan:
			keywordDone = true
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if vectorRes.err != nil {
		return nil, vectorRes.err
	}
	if keywordRes.err != nil {
		return nil, keywordRes.err
	}

	keywordMatches := keywordRes.matches
	if len(keywordMatches) > fetch {
		keywordMatches = keywordMatches[:fetch]
	}

	vectorScores := normalizeScores(vectorRes.matches)
	keywordScores := normalizeScores(keywordMatches)

	// Combine per id; an id present on both sides sums its weighted
	// normalized scores, which is always >= either side alone.
	combined := make(map[string]*types.SearchResult)
	for i, m := range vectorRes.matches {
		r := e.matchToResult(m, req.Query, types.MatchHybrid)
		r.Score = e.vectorWeight * vectorScores[i]
		combined[m.ID] = &r
	}
	for i, m := range keywordMatches {
		score := e.keywordWeight * keywordScores[i]
		if existing, ok := combined[m.ID]; ok {
			existing.Score += score
			continue
		}
		r := e.matchToResult(m, req.Query, types.MatchHybrid)
		r.Score = score
		combined[m.ID] = &r
	}

	results := make([]types.SearchResult, 0, len(combined))
	for _, r := range combined {
		results = append(results, *r)
	}
	sortResults(results)
	if len(results) > req.TopK {
		results = results[:req.TopK]
	}
	return results, nil
}

// vectorQuery embeds the query text and queries the store. Store
// failures surface as ErrSearchUnavailable; embedding failures keep
// their own type.
func (e *Engine) vectorQuery(ctx context.Context, query string, topK int, f filter.Filter) ([]vectorstore.Match, error) {
	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	matches, err := e.store.Query(ctx, vec, topK, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrSearchUnavailable, err)
	}
	return matches, nil
}

// keywordScan scores every stored chunk under the filter by occurrence
// count, returning matches ordered by score descending, id ascending.
func (e *Engine) keywordScan(ctx context.Context, query string, f filter.Filter) ([]vectorstore.Match, error) {
	keywords := Keywords(query)
	re := matchPattern(query, keywords)
	if re == nil {
		return nil, nil
	}

	var matches []vectorstore.Match
	err := e.scanner.ScanChunks(ctx, f, func(id, text string, meta types.Metadata) error {
		count := countOccurrences(text, re)
		if count == 0 {
			return nil
		}
		matches = append(matches, vectorstore.Match{
			ID:       id,
			Score:    float64(count),
			Metadata: meta,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

// matchToResult builds a SearchResult from a store match, filling the
// descriptive fields from metadata and attaching highlight fragments.
func (e *Engine) matchToResult(m vectorstore.Match, query string, matchType types.MatchType) types.SearchResult {
	r := types.SearchResult{
		ID:        m.ID,
		Score:     m.Score,
		MatchType: matchType,
	}
	r.FromMatchMetadata(m.Metadata)
	r.Highlights = buildFragments(r.Content, query)
	return r
}

// normalizeScores min-max normalizes match scores into [0, 1]. A
// single-score set (or an all-equal set) normalizes to 1.0 so a lone
// result is never zeroed out.
func normalizeScores(matches []vectorstore.Match) []float64 {
	if len(matches) == 0 {
		return nil
	}

	minScore, maxScore := matches[0].Score, matches[0].Score
	for _, m := range matches[1:] {
		if m.Score < minScore {
			minScore = m.Score
		}
		if m.Score > maxScore {
			maxScore = m.Score
		}
	}

	normalized := make([]float64, len(matches))
	if maxScore == minScore {
		for i := range normalized {
			normalized[i] = 1.0
		}
		return normalized
	}
	for i, m := range matches {
		normalized[i] = (m.Score - minScore) / (maxScore - minScore)
	}
	return normalized
}

// sortResults orders by score descending with ties broken by id
// ascending.
func sortResults(results []types.SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
}

// checkCache returns a copied cached response if present and fresh.
func (e *Engine) checkCache(req Request) ([]types.SearchResult, bool) {
	hash := computeQueryHash(req)

	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	entry, found := e.cache.Get(hash)
	if !found {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		e.cache.Remove(hash)
		return nil, false
	}
	return copyResults(entry.results), true
}

// storeInCache saves a copy of the results under the request hash.
func (e *Engine) storeInCache(req Request, results []types.SearchResult) {
	entry := &cacheEntry{
		results:   copyResults(results),
		expiresAt: time.Now().Add(e.cacheTTL),
	}

	e.cacheMu.Lock()
	e.cache.Add(computeQueryHash(req), entry)
	e.cacheMu.Unlock()
}

// copyResults deep-copies a result list so cached entries are isolated
// from caller mutations.
func copyResults(src []types.SearchResult) []types.SearchResult {
	dst := make([]types.SearchResult, len(src))
	copy(dst, src)
	for i := range dst {
		if src[i].Highlights != nil {
			dst[i].Highlights = append([]string(nil), src[i].Highlights...)
		}
	}
	return dst
}

// computeQueryHash builds a deterministic hash for a search request.
func computeQueryHash(req Request) [32]byte {
	var sb strings.Builder
	sb.WriteString(req.Query)
	sb.WriteString("|")
	sb.WriteString(string(req.Mode))
	sb.WriteString("|")
	fmt.Fprintf(&sb, "%d", req.TopK)
	sb.WriteString("|")
	sb.WriteString(req.Filters.Build().Canonical())
	return sha256.Sum256([]byte(sb.String()))
}
