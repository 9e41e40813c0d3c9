package docs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xhzhu1024/docqa/internal/retrieval"
)

type fakeIndexer struct {
	snippets []retrieval.Snippet
}

func (f *fakeIndexer) Add(ctx context.Context, snippets []retrieval.Snippet) error {
	f.snippets = append(f.snippets, snippets...)
	return nil
}

func TestProcessText(t *testing.T) {
	idx := &fakeIndexer{}
	p := NewProcessor(idx, 50, 10)

	n, err := p.ProcessText(context.Background(), strings.Repeat("travel advice. ", 20), "guide.md")
	if err != nil {
		t.Fatalf("ProcessText failed: %v", err)
	}
	if n < 2 {
		t.Fatalf("expected multiple chunks, got %d", n)
	}
	if len(idx.snippets) != n {
		t.Fatalf("indexer received %d snippets, reported %d", len(idx.snippets), n)
	}
	for _, s := range idx.snippets {
		if s.Source != "guide.md" {
			t.Fatalf("unexpected source: %q", s.Source)
		}
	}
}

func TestProcessTextEmpty(t *testing.T) {
	p := NewProcessor(&fakeIndexer{}, 100, 0)
	if _, err := p.ProcessText(context.Background(), "   \n ", "x.md"); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestProcessReaderRejectsUnsupportedTypes(t *testing.T) {
	p := NewProcessor(&fakeIndexer{}, 100, 0)
	_, err := p.ProcessReader(context.Background(), strings.NewReader("binary"), "photo.png")
	if err == nil {
		t.Fatal("expected error for unsupported file type")
	}
}

func TestProcessDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.md":      "first document about destinations",
		"b.txt":     "second document about museums",
		"skip.json": `{"not": "indexed"}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	idx := &fakeIndexer{}
	p := NewProcessor(idx, 1000, 0)

	n, err := p.ProcessDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ProcessDirectory failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 indexed files, got %d", n)
	}
	sources := map[string]bool{}
	for _, s := range idx.snippets {
		sources[s.Source] = true
	}
	if !sources["a.md"] || !sources["b.txt"] || sources["skip.json"] {
		t.Fatalf("unexpected sources: %v", sources)
	}
}

func TestStripHTML(t *testing.T) {
	html := `<html><head><script>var x = 1;</script><style>p{}</style></head>
<body><h1>Kyoto</h1><p>Temples &amp; shrines</p></body></html>`

	got := stripHTML(html)
	if strings.Contains(got, "var x") || strings.Contains(got, "p{}") {
		t.Fatalf("script/style content not stripped: %q", got)
	}
	if !strings.Contains(got, "Kyoto") || !strings.Contains(got, "Temples & shrines") {
		t.Fatalf("visible text lost: %q", got)
	}
	if strings.Contains(got, "<") {
		t.Fatalf("tags left behind: %q", got)
	}
}
