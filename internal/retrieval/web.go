package retrieval

import "context"

// WebResult is one ranked web search hit.
type WebResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// WebSearchOptions tunes a web search call.
type WebSearchOptions struct {
	SearchDepth    string
	MaxResults     int
	IncludeDomains []string
	ExcludeDomains []string
}

// WebRetriever is the web-search capability.
type WebRetriever interface {
	Search(ctx context.Context, query string, opts WebSearchOptions) ([]WebResult, error)
}
