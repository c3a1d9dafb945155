// Package pipeline wires configuration into the processing and retrieval
// components. Shared by the CLI and the MCP server so both surfaces run
// the identical pipeline.
package pipeline

import (
	"context"
	"fmt"

	"github.com/claimlens/claimlens/internal/chunk"
	"github.com/claimlens/claimlens/internal/config"
	"github.com/claimlens/claimlens/internal/docproc"
	"github.com/claimlens/claimlens/internal/embed"
	"github.com/claimlens/claimlens/internal/llm"
	"github.com/claimlens/claimlens/internal/retrieve"
)

// ProcessorConfig maps runtime configuration onto the document pipeline.
func ProcessorConfig(cfg config.Config) docproc.ProcessorConfig {
	pc := docproc.DefaultProcessorConfig()
	pc.Structure.HeaderThreshold = cfg.Structure.HeaderThreshold
	pc.Structured = chunk.Profile{
		Size:           cfg.Chunking.StructuredSize,
		Overlap:        cfg.Chunking.StructuredOverlap,
		Separators:     chunk.StructuredProfile().Separators,
		KeepSeparators: true,
	}
	pc.Standard = chunk.Profile{
		Size:       cfg.Chunking.StandardSize,
		Overlap:    cfg.Chunking.StandardOverlap,
		Separators: chunk.StandardProfile().Separators,
	}
	return pc
}

// RetrieveConfig maps runtime configuration onto the hybrid retriever.
func RetrieveConfig(cfg config.Config) retrieve.Config {
	return retrieve.Config{
		LexicalK:      cfg.Retrieval.LexicalK,
		VectorK:       cfg.Retrieval.VectorK,
		LexicalWeight: cfg.Retrieval.LexicalWeight,
		VectorWeight:  cfg.Retrieval.VectorWeight,
		RankConstant:  cfg.Retrieval.RankConstant,
	}
}

// NewEmbedder builds the embedding client. flagValue overrides the
// configured provider/model when non-empty.
func NewEmbedder(cfg config.Config, flagValue string) (embed.Embedder, error) {
	spec := flagValue
	if spec == "" {
		spec = cfg.Embed.Provider
	}
	ec, err := embed.ParseFlag(spec)
	if err != nil {
		return nil, err
	}
	if cfg.Embed.Endpoint != "" {
		ec.Endpoint = cfg.Embed.Endpoint
	}
	if cfg.Embed.APIKey != "" {
		ec.APIKey = cfg.Embed.APIKey
	}
	return embed.NewClient(ec)
}

// NewLLM builds the completion provider. flagValue overrides the
// configured provider/model when non-empty.
func NewLLM(cfg config.Config, flagValue string) (llm.Provider, error) {
	spec := flagValue
	if spec == "" {
		spec = cfg.LLM.Provider
	}
	lc, err := llm.ParseFlag(spec)
	if err != nil {
		return nil, err
	}
	if cfg.LLM.APIKey != "" {
		lc.APIKey = cfg.LLM.APIKey
	}
	return llm.NewProvider(lc)
}

// BuildIndex processes the given files and builds a hybrid retriever
// over their chunks. The processing result is returned alongside so
// callers can report skipped documents. Callers own the retriever's
// Close.
func BuildIndex(ctx context.Context, cfg config.Config, embedder embed.Embedder, paths []string) (*retrieve.Retriever, *docproc.Result, error) {
	proc := docproc.NewProcessor(ProcessorConfig(cfg))
	res := proc.ProcessFiles(ctx, paths)
	if res.Processed == 0 {
		return nil, res, fmt.Errorf("no documents were successfully processed")
	}

	ret, err := retrieve.Build(ctx, res.Chunks, embedder, RetrieveConfig(cfg))
	if err != nil {
		return nil, res, err
	}
	return ret, res, nil
}
