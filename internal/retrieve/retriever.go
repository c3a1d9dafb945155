// Package retrieve runs hybrid retrieval over a processed chunk set: a
// BM25 keyword index and an embedding-vector index queried side by side,
// their ranked lists fused with weighted reciprocal rank fusion.
package retrieve

import (
	"context"
	"errors"
	"fmt"

	"github.com/claimlens/claimlens/internal/ann"
	"github.com/claimlens/claimlens/internal/docproc"
	"github.com/claimlens/claimlens/internal/embed"
	"github.com/claimlens/claimlens/internal/lexical"
)

// ErrEmptyInput means the retriever was asked to index zero chunks.
var ErrEmptyInput = errors.New("no chunks to index")

// ErrRetrieverUnavailable wraps failures that leave the retriever with
// no usable index, lexical or vector.
var ErrRetrieverUnavailable = errors.New("retriever unavailable")

// Config tunes the hybrid query. Zero values fall back to defaults.
type Config struct {
	LexicalK      int     // candidates drawn from the keyword index (default 3)
	VectorK       int     // candidates drawn from the vector index (default 2)
	LexicalWeight float64 // fusion weight for keyword ranks (default 0.5)
	VectorWeight  float64 // fusion weight for vector ranks (default 0.5)
	RankConstant  int     // RRF dampening constant (default 60)
}

func (c Config) withDefaults() Config {
	if c.LexicalK <= 0 {
		c.LexicalK = 3
	}
	if c.VectorK <= 0 {
		c.VectorK = 2
	}
	if c.LexicalWeight <= 0 && c.VectorWeight <= 0 {
		c.LexicalWeight = 0.5
		c.VectorWeight = 0.5
	}
	if c.RankConstant <= 0 {
		c.RankConstant = 60
	}
	return c
}

// ScoredChunk is one fused retrieval hit. LexicalRank and VectorRank are
// 1-based positions in the source lists, 0 when the chunk was absent
// from that list.
type ScoredChunk struct {
	Chunk       docproc.Chunk
	Score       float64
	LexicalRank int
	VectorRank  int
}

// Retriever holds both indexes over one chunk set. Build once, query
// many times, Close when done.
type Retriever struct {
	cfg      Config
	chunks   map[int64]docproc.Chunk
	lex      *lexical.Index
	vec      *ann.Index
	embedder embed.Embedder
}

// Build indexes the chunk set in both stores. The whole build is
// all-or-nothing: if either index cannot be constructed the error wraps
// ErrRetrieverUnavailable and no retriever is returned.
func Build(ctx context.Context, chunks []docproc.Chunk, embedder embed.Embedder, cfg Config) (*Retriever, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyInput
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedder", ErrRetrieverUnavailable)
	}

	lex, err := lexical.Build(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: building keyword index: %v", ErrRetrieverUnavailable, err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		lex.Close()
		return nil, fmt.Errorf("%w: embedding chunks: %v", ErrRetrieverUnavailable, err)
	}
	if len(vectors) != len(chunks) {
		lex.Close()
		return nil, fmt.Errorf("%w: embedded %d of %d chunks", ErrRetrieverUnavailable, len(vectors), len(chunks))
	}

	// Chunk text is never blank, so an empty vector is an API fault.
	// Refusing it here keeps the no-partial-index guarantee: every
	// chunk is in both indexes or the build fails.
	for i, c := range chunks {
		if len(vectors[i]) == 0 {
			lex.Close()
			return nil, fmt.Errorf("%w: no embedding vector for chunk %d", ErrRetrieverUnavailable, c.ID)
		}
	}

	vec := ann.New(len(vectors[0]))
	byID := make(map[int64]docproc.Chunk, len(chunks))
	for i, c := range chunks {
		byID[c.ID] = c
		vec.Insert(c.ID, vectors[i])
	}

	return &Retriever{
		cfg:      cfg.withDefaults(),
		chunks:   byID,
		lex:      lex,
		vec:      vec,
		embedder: embedder,
	}, nil
}

// Query runs both searches with the configured candidate counts and
// fuses the ranked lists. A query that matches nothing in either index
// returns an empty slice, not an error.
func (r *Retriever) Query(ctx context.Context, query string) ([]ScoredChunk, error) {
	return r.QueryK(ctx, query, r.cfg.LexicalK, r.cfg.VectorK)
}

// QueryK is Query with per-call candidate counts. Non-positive counts
// fall back to the configured values.
func (r *Retriever) QueryK(ctx context.Context, query string, kLexical, kVector int) ([]ScoredChunk, error) {
	if kLexical <= 0 {
		kLexical = r.cfg.LexicalK
	}
	if kVector <= 0 {
		kVector = r.cfg.VectorK
	}

	lexHits, err := r.lex.Search(ctx, query, kLexical)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	vecHits := r.vec.Search(queryVec, kVector)

	lexIDs := make([]int64, len(lexHits))
	for i, h := range lexHits {
		lexIDs[i] = h.ChunkID
	}
	vecIDs := make([]int64, len(vecHits))
	for i, h := range vecHits {
		vecIDs[i] = h.ChunkID
	}

	fused := fuse(lexIDs, vecIDs, r.cfg)
	out := make([]ScoredChunk, 0, len(fused))
	for _, f := range fused {
		chunk, ok := r.chunks[f.id]
		if !ok {
			continue
		}
		out = append(out, ScoredChunk{
			Chunk:       chunk,
			Score:       f.score,
			LexicalRank: f.lexRank,
			VectorRank:  f.vecRank,
		})
	}
	return out, nil
}

// Close releases the keyword index. The vector index is plain memory.
func (r *Retriever) Close() error {
	return r.lex.Close()
}
