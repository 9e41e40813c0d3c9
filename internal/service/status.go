package service

import (
	"context"
	"fmt"

	"github.com/xhzhu1024/docqa/domain"
	"github.com/xhzhu1024/docqa/internal/retrieval"
)

// SystemStatus reports the readiness of each capability.
type SystemStatus struct {
	Status           string `json:"status"`
	LocalIndexReady  bool   `json:"local_index_ready"`
	DocumentCount    int    `json:"document_count"`
	WebSearchEnabled bool   `json:"web_search_enabled"`
	GuideToolCount   int    `json:"guide_tool_count"`
	SessionCount     int    `json:"session_count"`
	DefaultModel     string `json:"default_model"`
	ChunkSize        int    `json:"chunk_size"`
	ChunkOverlap     int    `json:"chunk_overlap"`
}

// documentCounter is implemented by local indexes that can report their size.
type documentCounter interface {
	DocumentCount(ctx context.Context) (int, error)
}

// Status reports the current capability readiness.
func (s *Service) Status(ctx context.Context) SystemStatus {
	st := SystemStatus{
		Status:           "ok",
		LocalIndexReady:  s.localAvailable(ctx),
		WebSearchEnabled: s.config.EnableWebSearch && s.web != nil,
		GuideToolCount:   len(s.guideTools),
		SessionCount:     s.sessions.Count(),
		DefaultModel:     s.config.DefaultModel,
		ChunkSize:        s.config.ChunkSize,
		ChunkOverlap:     s.config.ChunkOverlap,
	}
	if counter, ok := s.local.(documentCounter); ok {
		if n, err := counter.DocumentCount(ctx); err == nil {
			st.DocumentCount = n
		}
	}
	return st
}

// PerformWebSearch runs a standalone web search, subject to the same policy
// gate as question processing.
func (s *Service) PerformWebSearch(ctx context.Context, query string, settings *domain.SearchSettings) ([]domain.WebSource, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if !s.config.EnableWebSearch || s.web == nil {
		return nil, fmt.Errorf("web search is not enabled")
	}

	results := s.searchWeb(ctx, query, settings, s.config.WebMaxResults)
	_, webSources := collectWebResults(results)
	return webSources, nil
}

// CreateSession creates a new empty session and returns its id.
func (s *Service) CreateSession(ctx context.Context) (string, error) {
	return s.sessions.Create(ctx)
}

// GetSessionMessages returns the history entries of a session.
func (s *Service) GetSessionMessages(ctx context.Context, id string) ([]domain.HistoryEntry, error) {
	messages, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.FormatHistory(messages), nil
}

// ListSessions returns summaries of all sessions.
func (s *Service) ListSessions(ctx context.Context) ([]domain.SessionSummary, error) {
	return s.sessions.List(ctx)
}

// DeleteSession removes a session and its lock-map entry.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	unlock := s.lockSession(id)
	defer unlock()
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.releaseSessionLock(id)
	return nil
}

// ClearSession empties a session while keeping its id valid.
func (s *Service) ClearSession(ctx context.Context, id string) error {
	unlock := s.lockSession(id)
	defer unlock()
	return s.sessions.Clear(ctx, id)
}

// IndexDocuments adds snippets to the local index, when one is configured.
func (s *Service) IndexDocuments(ctx context.Context, snippets []retrieval.Snippet) error {
	indexer, ok := s.local.(retrieval.Indexer)
	if !ok || s.local == nil {
		return fmt.Errorf("local index is not configured")
	}
	return indexer.Add(ctx, snippets)
}
