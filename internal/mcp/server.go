package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/docbase/docbase/internal/answer"
	"github.com/docbase/docbase/internal/embedder"
	"github.com/docbase/docbase/internal/ingest"
	"github.com/docbase/docbase/internal/searcher"
	"github.com/docbase/docbase/internal/vectorstore"
)

const (
	// ServerName is the MCP server name
	ServerName = "docbase"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the database
	DefaultDBPath = "~/.docbase"

	// EnvAnswerAPIKey names the chat provider key for answer generation.
	EnvAnswerAPIKey = "DOCBASE_ANSWER_API_KEY"
	// EnvAnswerBaseURL overrides the chat provider endpoint.
	EnvAnswerBaseURL = "DOCBASE_ANSWER_BASE_URL"
	// EnvAnswerModel overrides the chat model.
	EnvAnswerModel = "DOCBASE_ANSWER_MODEL"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	store     *vectorstore.SQLiteStore
	engine    *searcher.Engine
	pipeline  *ingest.Pipeline
	assembler *answer.Assembler
}

// NewServer creates a new MCP server instance
func NewServer(dbPath string) (*Server, error) {
	// Expand home directory if needed
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".docbase")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbFile := filepath.Join(dbPath, "docbase.db")

	store, err := vectorstore.NewSQLite(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	engine := searcher.NewEngine(store, store, emb, searcher.Config{})
	pipeline := ingest.NewPipeline(store, emb, ingest.Options{})
	assembler := answer.NewAssembler(answerGeneratorFromEnv(), 0)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:       mcpServer,
		store:     store,
		engine:    engine,
		pipeline:  pipeline,
		assembler: assembler,
	}

	if err := s.registerTools(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(ingestDocumentTool(), s.handleIngestDocument)
	s.mcp.AddTool(removeDocumentTool(), s.handleRemoveDocument)
	s.mcp.AddTool(searchDocsTool(), s.handleSearchDocs)
	s.mcp.AddTool(generateAnswerTool(), s.handleGenerateAnswer)
	s.mcp.AddTool(getStatsTool(), s.handleGetStats)
	return nil
}

// answerGeneratorFromEnv builds the chat-backed generator when a key is
// configured. Without one the assembler simply falls back.
func answerGeneratorFromEnv() answer.Generator {
	apiKey := os.Getenv(EnvAnswerAPIKey)
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil
	}

	gen, err := answer.NewOpenAIGenerator(answer.OpenAIConfig{
		APIKey:    apiKey,
		BaseURL:   os.Getenv(EnvAnswerBaseURL),
		ChatModel: os.Getenv(EnvAnswerModel),
	})
	if err != nil {
		return nil
	}
	return gen
}
