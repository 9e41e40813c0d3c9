package retrieval

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteIndex is a full-text snippet index backed by SQLite FTS5. It serves
// as the local similarity-search collaborator and as the sink for the upload
// pipeline.
type SQLiteIndex struct {
	db *sql.DB
}

var (
	_ LocalRetriever = (*SQLiteIndex)(nil)
	_ Indexer        = (*SQLiteIndex)(nil)
)

// NewSQLiteIndex opens or creates the index at the given DSN.
func NewSQLiteIndex(dsn string) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	idx := &SQLiteIndex{db: db}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate index: %w", err)
	}
	return idx, nil
}

func (idx *SQLiteIndex) migrate() error {
	_, err := idx.db.Exec(
		`CREATE VIRTUAL TABLE IF NOT EXISTS chunks USING fts5(content, source)`)
	return err
}

// Close closes the underlying database.
func (idx *SQLiteIndex) Close() error {
	return idx.db.Close()
}

// Add inserts snippets into the index.
func (idx *SQLiteIndex) Add(ctx context.Context, snippets []Snippet) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks (content, source) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range snippets {
		if _, err := stmt.ExecContext(ctx, s.Content, s.Source); err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}
	return tx.Commit()
}

// Ready reports whether the index holds at least one chunk.
func (idx *SQLiteIndex) Ready(ctx context.Context) bool {
	var n int
	if err := idx.db.QueryRowContext(ctx, `SELECT count(*) FROM chunks`).Scan(&n); err != nil {
		return false
	}
	return n > 0
}

// Search returns up to k snippets ranked by bm25 relevance.
func (idx *SQLiteIndex) Search(ctx context.Context, query string, k int) ([]Snippet, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := idx.db.QueryContext(ctx,
		`SELECT content, source FROM chunks WHERE chunks MATCH ? ORDER BY bm25(chunks) LIMIT ?`,
		match, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	defer rows.Close()

	var snippets []Snippet
	for rows.Next() {
		var s Snippet
		if err := rows.Scan(&s.Content, &s.Source); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		snippets = append(snippets, s)
	}
	return snippets, rows.Err()
}

// DocumentCount returns the number of distinct sources in the index.
func (idx *SQLiteIndex) DocumentCount(ctx context.Context) (int, error) {
	var n int
	err := idx.db.QueryRowContext(ctx, `SELECT count(DISTINCT source) FROM chunks`).Scan(&n)
	return n, err
}

// ftsQuery quotes each term so user punctuation cannot break FTS5 query
// syntax, OR-ing the terms for recall.
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		terms = append(terms, `"`+f+`"`)
	}
	return strings.Join(terms, " OR ")
}
