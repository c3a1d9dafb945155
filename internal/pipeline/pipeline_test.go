package pipeline

import (
	"testing"

	"github.com/claimlens/claimlens/internal/config"
)

func TestProcessorConfigMapping(t *testing.T) {
	cfg := config.Default()
	cfg.Chunking.StructuredSize = 900
	cfg.Chunking.StandardOverlap = 75
	cfg.Structure.HeaderThreshold = 8

	pc := ProcessorConfig(cfg)
	if pc.Structured.Size != 900 {
		t.Errorf("Structured.Size = %d, want 900", pc.Structured.Size)
	}
	if !pc.Structured.KeepSeparators {
		t.Error("structured profile must retain separators")
	}
	if pc.Standard.Overlap != 75 {
		t.Errorf("Standard.Overlap = %d, want 75", pc.Standard.Overlap)
	}
	if pc.Standard.KeepSeparators {
		t.Error("standard profile must discard separators")
	}
	if pc.Structure.HeaderThreshold != 8 {
		t.Errorf("HeaderThreshold = %d, want 8", pc.Structure.HeaderThreshold)
	}
}

func TestRetrieveConfigMapping(t *testing.T) {
	cfg := config.Default()
	cfg.Retrieval.LexicalK = 6
	cfg.Retrieval.VectorWeight = 0.4

	rc := RetrieveConfig(cfg)
	if rc.LexicalK != 6 {
		t.Errorf("LexicalK = %d, want 6", rc.LexicalK)
	}
	if rc.VectorWeight != 0.4 {
		t.Errorf("VectorWeight = %v, want 0.4", rc.VectorWeight)
	}
	if rc.RankConstant != 60 {
		t.Errorf("RankConstant = %d, want 60", rc.RankConstant)
	}
}

func TestNewEmbedderFlagOverridesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Embed.Provider = "openai/text-embedding-3-small"
	cfg.Embed.APIKey = "from-config"

	e, err := NewEmbedder(cfg, "ollama/nomic-embed-text")
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}
	if e == nil {
		t.Fatal("nil embedder")
	}
}

func TestNewEmbedderInvalidSpec(t *testing.T) {
	cfg := config.Default()
	if _, err := NewEmbedder(cfg, "nomodel"); err == nil {
		t.Fatal("expected error for invalid embed spec")
	}
}
