package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ingestDocumentTool returns the tool definition for ingest_document
func ingestDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ingest_document",
		Description: "Ingest a document into the knowledge base: chunk, embed, and store it for search",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Stable document identifier; re-ingesting the same id replaces its chunks",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Full document text",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Document title shown in search results",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Category label used for filtering (e.g. 'guides', 'api')",
				},
				"version": map[string]interface{}{
					"type":        "string",
					"description": "Documentation version label (e.g. '2.1')",
				},
				"replace": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, delete any previously stored chunks for this document first",
					"default":     true,
				},
			},
			Required: []string{"document_id", "content"},
		},
	}
}

// removeDocumentTool returns the tool definition for remove_document
func removeDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "remove_document",
		Description: "Remove a document and all of its stored chunks from the knowledge base",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the document to remove",
				},
			},
			Required: []string{"document_id"},
		},
	}
}

// searchDocsTool returns the tool definition for search_docs
func searchDocsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_docs",
		Description: "Search the documentation knowledge base with semantic, keyword, or hybrid ranking",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Search strategy: hybrid (vector + keyword), semantic (vector only), or keyword (occurrence counts only)",
					"enum":        []string{"hybrid", "semantic", "keyword"},
					"default":     "hybrid",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"categories": map[string]interface{}{
					"type":        "array",
					"description": "Restrict results to these category labels",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"versions": map[string]interface{}{
					"type":        "array",
					"description": "Restrict results to these documentation versions",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to chunks of a single document",
				},
				"contains": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to chunks whose text contains this substring (case-insensitive)",
				},
			},
			Required: []string{"query"},
		},
	}
}

// generateAnswerTool returns the tool definition for generate_answer
func generateAnswerTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_answer",
		Description: "Answer a question from the knowledge base, grounded in the top search results",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Question to answer from the stored documentation",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Number of search results to ground the answer on (1-20)",
					"default":     5,
					"minimum":     1,
					"maximum":     20,
				},
				"categories": map[string]interface{}{
					"type":        "array",
					"description": "Restrict grounding to these category labels",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"versions": map[string]interface{}{
					"type":        "array",
					"description": "Restrict grounding to these documentation versions",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"question"},
		},
	}
}

// getStatsTool returns the tool definition for get_stats
func getStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_stats",
		Description: "Report knowledge base statistics: stored vector count and embedding dimensions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
