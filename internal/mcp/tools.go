package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docbase/docbase/internal/answer"
	"github.com/docbase/docbase/internal/filter"
	"github.com/docbase/docbase/internal/searcher"
	"github.com/docbase/docbase/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery      = -32001 // Query parameter is empty
	ErrorCodeIngestionFailed = -32002 // Document could not be ingested
	ErrorCodeStoreFailure    = -32003 // Vector store is unavailable
)

// handleIngestDocument handles the ingest_document tool invocation
func (s *Server) handleIngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	documentID, ok := args["document_id"].(string)
	if !ok || documentID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "document_id parameter is required", map[string]interface{}{
			"param":  "document_id",
			"reason": "missing or empty",
		})
	}

	content, ok := args["content"].(string)
	if !ok || content == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "content parameter is required", map[string]interface{}{
			"param":  "content",
			"reason": "missing or empty",
		})
	}

	replace := getBoolDefault(args, "replace", true)

	doc := types.Document{
		ID:       documentID,
		Content:  content,
		Metadata: documentMetadata(args),
	}

	var result *ingestResult
	if replace {
		r, err := s.pipeline.Reingest(ctx, doc)
		if err != nil {
			return nil, ingestError(err)
		}
		result = &ingestResult{r.JobID, r.ChunksProcessed, r.Duration.Milliseconds()}
	} else {
		r, err := s.pipeline.Ingest(ctx, doc)
		if err != nil {
			return nil, ingestError(err)
		}
		result = &ingestResult{r.JobID, r.ChunksProcessed, r.Duration.Milliseconds()}
	}

	// Stored chunks changed; cached search responses are stale.
	s.engine.InvalidateCache()

	response := map[string]interface{}{
		"ingested":         true,
		"job_id":           result.jobID,
		"document_id":      documentID,
		"chunks_processed": result.chunks,
		"duration_ms":      result.durationMs,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

type ingestResult struct {
	jobID      string
	chunks     int
	durationMs int64
}

// handleRemoveDocument handles the remove_document tool invocation
func (s *Server) handleRemoveDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	documentID, ok := args["document_id"].(string)
	if !ok || documentID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "document_id parameter is required", map[string]interface{}{
			"param":  "document_id",
			"reason": "missing or empty",
		})
	}

	if err := s.pipeline.RemoveDocument(ctx, documentID); err != nil {
		return nil, newMCPError(ErrorCodeStoreFailure, "failed to remove document", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.engine.InvalidateCache()

	response := map[string]interface{}{
		"removed":     true,
		"document_id": documentID,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchDocs handles the search_docs tool invocation
func (s *Server) handleSearchDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	topK := getIntDefault(args, "top_k", 10)
	if topK < 1 || topK > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "top_k must be between 1 and 100", map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	}

	mode := getStringDefault(args, "mode", string(searcher.ModeHybrid))
	if mode != string(searcher.ModeHybrid) && mode != string(searcher.ModeSemantic) && mode != string(searcher.ModeKeyword) {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid mode", map[string]interface{}{
			"param":   "mode",
			"value":   mode,
			"allowed": []string{"hybrid", "semantic", "keyword"},
		})
	}

	results, err := s.engine.Search(ctx, searcher.Request{
		Query:    query,
		Mode:     searcher.Mode(mode),
		TopK:     topK,
		Filters:  filterRequest(args),
		UseCache: true,
	})
	if err != nil {
		return nil, searchError(err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":   query,
		"mode":    mode,
		"count":   len(results),
		"results": formatResults(results),
	})), nil
}

// handleGenerateAnswer handles the generate_answer tool invocation
func (s *Server) handleGenerateAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	question, ok := args["question"].(string)
	if !ok || question == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "question parameter is required and cannot be empty", map[string]interface{}{
			"param":  "question",
			"reason": "missing or empty",
		})
	}

	topK := getIntDefault(args, "top_k", 5)
	if topK < 1 || topK > 20 {
		return nil, newMCPError(ErrorCodeInvalidParams, "top_k must be between 1 and 20", map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	}

	results, err := s.engine.Search(ctx, searcher.Request{
		Query:    question,
		Mode:     searcher.ModeHybrid,
		TopK:     topK,
		Filters:  filterRequest(args),
		UseCache: true,
	})
	if err != nil {
		return nil, searchError(err)
	}

	text := s.assembler.GenerateAnswer(ctx, question, results)

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"question": question,
		"answer":   text,
		"grounded": text != answer.FallbackAnswer,
		"sources":  formatSources(results),
	})), nil
}

// handleGetStats handles the get_stats tool invocation
func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeStoreFailure, "failed to read store statistics", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"vector_count": stats.VectorCount,
		"dimensions":   stats.Dimensions,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// documentMetadata collects the optional descriptive fields into chunk
// metadata, stamping the ingestion time.
func documentMetadata(args map[string]interface{}) types.Metadata {
	meta := types.Metadata{}
	if title := getStringDefault(args, "title", ""); title != "" {
		meta[types.FieldTitle] = types.String(title)
	}
	if category := getStringDefault(args, "category", ""); category != "" {
		meta[types.FieldCategory] = types.String(category)
	}
	if version := getStringDefault(args, "version", ""); version != "" {
		meta[types.FieldVersion] = types.String(version)
	}
	meta.StampCreatedAt()
	return meta
}

// filterRequest extracts the structured filter parameters shared by the
// search and answer tools.
func filterRequest(args map[string]interface{}) filter.Request {
	return filter.Request{
		Categories: getStringList(args, "categories"),
		Versions:   getStringList(args, "versions"),
		DocumentID: getStringDefault(args, "document_id", ""),
		Text:       getStringDefault(args, "contains", ""),
	}
}

// formatResults shapes search results for the tool response.
func formatResults(results []types.SearchResult) []map[string]interface{} {
	out := make([]map[string]interface{}, len(results))
	for i, r := range results {
		entry := map[string]interface{}{
			"id":          r.ID,
			"score":       r.Score,
			"match_type":  string(r.MatchType),
			"document_id": r.DocumentID,
			"content":     r.Content,
		}
		if r.Title != "" {
			entry["title"] = r.Title
		}
		if r.Category != "" {
			entry["category"] = r.Category
		}
		if r.Version != "" {
			entry["version"] = r.Version
		}
		if len(r.Highlights) > 0 {
			entry["highlights"] = r.Highlights
		}
		out[i] = entry
	}
	return out
}

// formatSources lists the grounding documents for an answer.
func formatSources(results []types.SearchResult) []map[string]interface{} {
	out := make([]map[string]interface{}, len(results))
	for i, r := range results {
		out[i] = map[string]interface{}{
			"id":          r.ID,
			"document_id": r.DocumentID,
			"title":       r.Title,
			"score":       r.Score,
		}
	}
	return out
}

// ingestError maps pipeline failures onto MCP error codes.
func ingestError(err error) error {
	if errors.Is(err, types.ErrInvalidInput) || errors.Is(err, types.ErrInvalidConfig) {
		return newMCPError(ErrorCodeInvalidParams, "invalid document", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return newMCPError(ErrorCodeIngestionFailed, "ingestion failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// searchError maps search failures onto MCP error codes.
func searchError(err error) error {
	if errors.Is(err, types.ErrInvalidInput) {
		return newMCPError(ErrorCodeInvalidParams, "invalid search request", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if errors.Is(err, types.ErrSearchUnavailable) || errors.Is(err, types.ErrStoreUnavailable) {
		return newMCPError(ErrorCodeStoreFailure, "search backend unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringList extracts a string array parameter
func getStringList(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
