// Package mcp exposes ClaimLens over the Model Context Protocol.
//
// Two tools: analyze_claim runs the full assessment pipeline over a set
// of document files, search_documents runs hybrid retrieval only. Each
// call processes its documents and builds an ephemeral index; no state
// survives between calls. Stdio transport, for MCP-capable assistants.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claimlens/claimlens/internal/assess"
	"github.com/claimlens/claimlens/internal/config"
	"github.com/claimlens/claimlens/internal/embed"
	"github.com/claimlens/claimlens/internal/llm"
	"github.com/claimlens/claimlens/internal/pipeline"
	"github.com/claimlens/claimlens/internal/retrieve"
)

// ServerConfig holds the wiring for the MCP server.
type ServerConfig struct {
	Version  string
	Config   config.Config
	Embedder embed.Embedder
	LLM      llm.Provider // required for analyze_claim only
}

// NewServer creates the MCP server with both tools registered.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"ClaimLens",
		ver,
		server.WithToolCapabilities(false),
	)

	registerAnalyzeTool(s, cfg)
	registerSearchTool(s, cfg)
	return s
}

func registerAnalyzeTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("analyze_claim",
		mcp.WithDescription("Assess claim risk and validity from a set of claim documents. Processes the files, retrieves the passages most relevant to the question, and returns a structured risk assessment as JSON."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("paths",
			mcp.Required(),
			mcp.Description("Document file paths, separated by newlines or commas"),
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The claim question to assess, e.g. 'Is this water damage claim valid under the policy?'"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pathsArg, err := req.RequireString("paths")
		if err != nil {
			return mcp.NewToolResultError("paths is required"), nil
		}
		question, err := req.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError("question is required"), nil
		}
		paths := splitPaths(pathsArg)
		if len(paths) == 0 {
			return mcp.NewToolResultError("no document paths given"), nil
		}
		if cfg.LLM == nil {
			return mcp.NewToolResultError("no LLM provider configured; set llm.provider or CLAIMLENS_LLM"), nil
		}

		index, res, err := pipeline.BuildIndex(ctx, cfg.Config, cfg.Embedder, paths)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("building index: %v", err)), nil
		}
		defer index.Close()

		hits, err := index.Query(ctx, question)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
		}
		if len(hits) == 0 {
			return mcp.NewToolResultError("no relevant documents found for the question"), nil
		}

		assessment, err := assess.NewAnalyzer(cfg.LLM).Analyze(ctx, hits, question)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("assessment failed: %v", err)), nil
		}

		out := map[string]any{
			"analysis": assessment,
			"metadata": map[string]any{
				"processed_files":  len(paths),
				"successful_files": res.Processed,
				"skipped_files":    res.Skipped,
				"retrieved_chunks": len(hits),
				"top_documents":    topDocuments(hits),
			},
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerSearchTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("search_documents",
		mcp.WithDescription("Hybrid keyword + semantic search over a set of claim documents. Returns ranked chunks with fused scores and provenance."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("paths",
			mcp.Required(),
			mcp.Description("Document file paths, separated by newlines or commas"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithNumber("k_lexical",
			mcp.Description("Candidates from the keyword index (default: 3)"),
		),
		mcp.WithNumber("k_vector",
			mcp.Description("Candidates from the vector index (default: 2)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pathsArg, err := req.RequireString("paths")
		if err != nil {
			return mcp.NewToolResultError("paths is required"), nil
		}
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}
		paths := splitPaths(pathsArg)
		if len(paths) == 0 {
			return mcp.NewToolResultError("no document paths given"), nil
		}

		runCfg := cfg.Config
		if v, err := req.RequireFloat("k_lexical"); err == nil && int(v) > 0 {
			runCfg.Retrieval.LexicalK = int(v)
		}
		if v, err := req.RequireFloat("k_vector"); err == nil && int(v) > 0 {
			runCfg.Retrieval.VectorK = int(v)
		}

		index, res, err := pipeline.BuildIndex(ctx, runCfg, cfg.Embedder, paths)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("building index: %v", err)), nil
		}
		defer index.Close()

		hits, err := index.Query(ctx, query)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
		}

		out := map[string]any{
			"results": searchResults(hits),
			"metadata": map[string]any{
				"processed_files":  len(paths),
				"successful_files": res.Processed,
				"skipped_files":    res.Skipped,
				"indexed_chunks":   len(res.Chunks),
			},
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

// ServeStdio runs the server over stdin/stdout until the client
// disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func splitPaths(arg string) []string {
	fields := strings.FieldsFunc(arg, func(r rune) bool {
		return r == '\n' || r == ','
	})
	paths := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			paths = append(paths, f)
		}
	}
	return paths
}

func searchResults(hits []retrieve.ScoredChunk) []map[string]any {
	out := make([]map[string]any, len(hits))
	for i, h := range hits {
		out[i] = map[string]any{
			"score":        h.Score,
			"lexical_rank": h.LexicalRank,
			"vector_rank":  h.VectorRank,
			"document":     h.Chunk.DocName,
			"doc_type":     string(h.Chunk.DocType),
			"section":      h.Chunk.Section,
			"content":      h.Chunk.Text,
		}
	}
	return out
}

func topDocuments(hits []retrieve.ScoredChunk) []map[string]any {
	out := make([]map[string]any, 0, len(hits))
	seen := map[string]bool{}
	for _, h := range hits {
		if seen[h.Chunk.DocName] {
			continue
		}
		seen[h.Chunk.DocName] = true
		out = append(out, map[string]any{
			"file_name": h.Chunk.DocName,
			"doc_type":  string(h.Chunk.DocType),
		})
	}
	return out
}
