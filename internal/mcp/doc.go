// Package mcp implements the Model Context Protocol (MCP) server for
// docbase.
//
// The server exposes five tools to MCP clients:
//   - ingest_document: Chunk, embed, and store a document
//   - remove_document: Delete a document's stored chunks
//   - search_docs: Semantic, keyword, or hybrid search over stored chunks
//   - generate_answer: Grounded question answering over search results
//   - get_stats: Store statistics
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout is reserved for protocol messages; all logging goes to stderr.
//
// # Tool: ingest_document
//
// Store a document for search:
//
//	Request:
//	{
//	  "name": "ingest_document",
//	  "arguments": {
//	    "document_id": "guides/getting-started",
//	    "content": "...",
//	    "title": "Getting Started",
//	    "category": "guides",
//	    "version": "2.1"
//	  }
//	}
//
//	Response:
//	{
//	  "ingested": true,
//	  "job_id": "3f8d...",
//	  "document_id": "guides/getting-started",
//	  "chunks_processed": 4,
//	  "duration_ms": 812
//	}
//
// Ingestion is all-or-nothing: a failure while embedding any chunk
// leaves the store untouched. With "replace": true (the default) any
// previously stored chunks for the document are deleted first.
//
// # Tool: search_docs
//
// Search stored chunks:
//
//	Request:
//	{
//	  "name": "search_docs",
//	  "arguments": {
//	    "query": "how do I configure authentication",
//	    "mode": "hybrid",
//	    "top_k": 10,
//	    "categories": ["guides"],
//	    "versions": ["2.1"]
//	  }
//	}
//
// Results are ordered by score descending with ties broken by id, and
// include highlight fragments with query terms wrapped in <mark> tags.
//
// # Tool: generate_answer
//
// Answer a question grounded in the top search results. When no chat
// provider is configured, or generation fails for any reason, the
// answer field carries a fixed fallback string and "grounded" is false.
//
// # Error Handling
//
// Tool failures return JSON-RPC errors with structured data:
//
//	-32602: invalid parameters
//	-32603: internal error
//	-32001: empty query or question
//	-32002: ingestion failed
//	-32003: store unavailable
package mcp
