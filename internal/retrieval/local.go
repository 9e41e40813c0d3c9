// Package retrieval provides the local and web retrieval collaborators
// consumed by the orchestrator.
package retrieval

import "context"

// Snippet is one retrieved text segment with its source identifier.
type Snippet struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// LocalRetriever is the similarity-search capability over uploaded documents.
type LocalRetriever interface {
	// Ready reports whether the index is initialized and non-empty.
	Ready(ctx context.Context) bool

	// Search returns up to k snippets ranked by relevance to the query.
	Search(ctx context.Context, query string, k int) ([]Snippet, error)
}

// Indexer accepts new snippets into the local index. Implemented alongside
// LocalRetriever by the concrete index; consumed by the upload pipeline.
type Indexer interface {
	Add(ctx context.Context, snippets []Snippet) error
}
