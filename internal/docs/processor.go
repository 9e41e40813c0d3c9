// Package docs turns raw documents into indexed snippets.
package docs

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/xhzhu1024/docqa/internal/retrieval"
)

// supportedExtensions lists the file types the processor accepts.
var supportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// Processor splits documents into chunks and feeds them to the index.
type Processor struct {
	indexer    retrieval.Indexer
	splitter   textsplitter.TextSplitter
	httpClient *http.Client
}

// NewProcessor creates a processor with the given chunking parameters.
func NewProcessor(indexer retrieval.Indexer, chunkSize, chunkOverlap int) *Processor {
	return &Processor{
		indexer: indexer,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ProcessText splits raw text and indexes the chunks under the given source
// label. Returns the number of chunks indexed.
func (p *Processor) ProcessText(ctx context.Context, text, source string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("document is empty")
	}

	chunks, err := p.splitter.SplitText(text)
	if err != nil {
		return 0, fmt.Errorf("failed to split document: %w", err)
	}

	snippets := make([]retrieval.Snippet, 0, len(chunks))
	for _, c := range chunks {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		snippets = append(snippets, retrieval.Snippet{Content: c, Source: source})
	}
	if len(snippets) == 0 {
		return 0, fmt.Errorf("document produced no indexable chunks")
	}

	if err := p.indexer.Add(ctx, snippets); err != nil {
		return 0, fmt.Errorf("failed to index document: %w", err)
	}
	return len(snippets), nil
}

// ProcessReader indexes a document from a stream, typically an upload.
func (p *Processor) ProcessReader(ctx context.Context, r io.Reader, name string) (int, error) {
	if ext := strings.ToLower(filepath.Ext(name)); !supportedExtensions[ext] {
		return 0, fmt.Errorf("unsupported file type: %s", ext)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read document: %w", err)
	}
	return p.ProcessText(ctx, string(data), filepath.Base(name))
}

// ProcessFile indexes a document from disk.
func (p *Processor) ProcessFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return p.ProcessReader(ctx, f, path)
}

// ProcessDirectory indexes every supported file under dir. Individual file
// failures are logged and skipped. Returns the number of files indexed.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) (int, error) {
	indexed := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if _, err := p.ProcessFile(ctx, path); err != nil {
			log.Printf("WARN: skipping %s: %v", path, err)
			return nil
		}
		indexed++
		return nil
	})
	if err != nil {
		return indexed, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return indexed, nil
}

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`[ \t]+`)
)

// ProcessURL fetches a page and indexes its text content under the URL as
// source.
func (p *Processor) ProcessURL(ctx context.Context, pageURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch of %s returned status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", pageURL, err)
	}

	return p.ProcessText(ctx, stripHTML(string(body)), pageURL)
}

// stripHTML reduces a page to its visible text.
func stripHTML(s string) string {
	s = scriptRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = spaceRe.ReplaceAllString(s, " ")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
