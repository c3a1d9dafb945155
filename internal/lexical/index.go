// Package lexical provides the BM25 keyword index over one chunk set.
//
// Backed by an in-memory SQLite FTS5 table with the porter unicode61
// tokenizer. One database per index, built once per retrieval session and
// discarded with it; there are no incremental updates.
package lexical

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	_ "modernc.org/sqlite"

	"github.com/claimlens/claimlens/internal/docproc"
)

// Result is one lexical hit: chunk identity plus its BM25 score
// (higher is better).
type Result struct {
	ChunkID int64
	Score   float64
}

// Index is an immutable full-text index over a chunk set. Safe for
// concurrent Search calls once built.
type Index struct {
	db *sql.DB
}

// Build indexes every chunk, all-or-nothing: any failure closes the
// database and returns an error with no usable index behind it.
func Build(ctx context.Context, chunks []docproc.Chunk) (*Index, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// A pooled second connection would see its own empty memory database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx,
		`CREATE VIRTUAL TABLE chunks_fts USING fts5(
			content,
			doc_name,
			section,
			tokenize='porter unicode61'
		)`,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating FTS table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("beginning index transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks_fts(rowid, content, doc_name, section) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Text, c.DocName, c.Section); err != nil {
			stmt.Close()
			tx.Rollback()
			db.Close()
			return nil, fmt.Errorf("indexing chunk %d: %w", c.ID, err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, fmt.Errorf("committing index: %w", err)
	}

	return &Index{db: db}, nil
}

// Search returns up to limit chunks ranked by BM25. A query with no
// indexable terms or no matches returns an empty result, not an error.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	match := matchExpr(query)
	if match == "" {
		return nil, nil
	}

	// FTS5 rank is the negated BM25 score: ascending rank = best match.
	rows, err := ix.db.QueryContext(ctx,
		`SELECT rowid, rank FROM chunks_fts WHERE chunks_fts MATCH ? ORDER BY rank LIMIT ?`,
		match, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("FTS query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var rank float64
		if err := rows.Scan(&r.ChunkID, &rank); err != nil {
			return nil, fmt.Errorf("scanning FTS result: %w", err)
		}
		r.Score = -rank
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases the in-memory database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// matchExpr turns a free-form query into a safe FTS5 MATCH expression:
// alphanumeric terms, each quoted, joined with OR. Returns "" when the
// query holds no indexable terms.
func matchExpr(query string) string {
	terms := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " OR ")
}
