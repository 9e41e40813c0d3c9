package retrieval

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

// newTestIndex skips when the sqlite driver was built without FTS5 support.
func newTestIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		if strings.Contains(err.Error(), "fts5") {
			t.Skipf("sqlite built without FTS5: %v", err)
		}
		t.Fatalf("NewSQLiteIndex failed: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestEmptyIndexNotReady(t *testing.T) {
	idx := newTestIndex(t)
	if idx.Ready(context.Background()) {
		t.Fatal("empty index must not report ready")
	}
}

func TestAddAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	err := idx.Add(ctx, []Snippet{
		{Content: "Kyoto has many temples and shrines", Source: "kyoto.md"},
		{Content: "Paris is known for its museums", Source: "paris.md"},
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !idx.Ready(ctx) {
		t.Fatal("index with chunks must report ready")
	}

	snippets, err := idx.Search(ctx, "temples", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(snippets) != 1 || snippets[0].Source != "kyoto.md" {
		t.Fatalf("unexpected results: %+v", snippets)
	}
}

func TestSearchLimit(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	var snippets []Snippet
	for i := 0; i < 10; i++ {
		snippets = append(snippets, Snippet{Content: "about travel and destinations", Source: "doc.md"})
	}
	if err := idx.Add(ctx, snippets); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := idx.Search(ctx, "travel", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
}

func TestDocumentCount(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	err := idx.Add(ctx, []Snippet{
		{Content: "chunk one", Source: "a.md"},
		{Content: "chunk two", Source: "a.md"},
		{Content: "chunk three", Source: "b.md"},
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	n, err := idx.DocumentCount(ctx)
	if err != nil {
		t.Fatalf("DocumentCount failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 distinct sources, got %d", n)
	}
}

func TestFTSQueryQuotesPunctuation(t *testing.T) {
	got := ftsQuery(`what is "FTS5"?`)
	if strings.Contains(got, `""`) {
		t.Fatalf("embedded quotes not stripped: %q", got)
	}
	if !strings.Contains(got, " OR ") {
		t.Fatalf("terms not OR-joined: %q", got)
	}

	if ftsQuery("   ") != "" {
		t.Fatal("blank query must produce an empty match expression")
	}
}
