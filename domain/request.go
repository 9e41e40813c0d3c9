package domain

import (
	"fmt"
	"strings"
)

// SearchSettings tunes an outbound web search.
type SearchSettings struct {
	SearchDepth    string   `json:"search_depth,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
}

// QuestionRequest is a single question against a session. HistoryID, Model and
// Temperature are optional; absent values resolve to configured defaults.
type QuestionRequest struct {
	Question       string          `json:"question"`
	HistoryID      string          `json:"history_id,omitempty"`
	Model          string          `json:"model,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	UseWebSearch   bool            `json:"use_web_search,omitempty"`
	SearchSettings *SearchSettings `json:"search_settings,omitempty"`
}

// Validate rejects requests that must not reach any collaborator.
func (r *QuestionRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("question is required")
	}
	return nil
}

// WebSource is a provenance record for a web search result.
type WebSource struct {
	URL            string `json:"url"`
	Title          string `json:"title"`
	ContentPreview string `json:"content_preview"`
}

// HistoryEntry is one turn of the post-update conversation, formatted for
// clients.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnswerResult is the outcome of processing one question.
type AnswerResult struct {
	Answer     string         `json:"answer"`
	Sources    []string       `json:"sources"`
	WebSources []WebSource    `json:"web_sources,omitempty"`
	History    []HistoryEntry `json:"history"`
	HistoryID  string         `json:"history_id"`
}

// StreamMetadata is carried by the final frame of a streamed answer.
type StreamMetadata struct {
	Done       bool        `json:"done"`
	Sources    []string    `json:"sources"`
	WebSources []WebSource `json:"web_sources"`
	HistoryID  string      `json:"history_id"`
	Error      string      `json:"error,omitempty"`
}

// FormatHistory renders messages as role/content pairs for client display.
func FormatHistory(messages []Message) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, HistoryEntry{Role: string(m.Role), Content: m.Content})
	}
	return entries
}
