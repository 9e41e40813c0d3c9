package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xhzhu1024/docqa/domain"
)

// Durable record layout: one JSON file per session, messages tagged with the
// wire types human/ai/system.
type sessionRecord struct {
	SessionID string          `json:"session_id"`
	Messages  []messageRecord `json:"messages"`
	CreatedAt time.Time       `json:"created_at"`
}

type messageRecord struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func toRecord(m domain.Message) messageRecord {
	switch m.Role {
	case domain.RoleUser:
		return messageRecord{Type: "human", Content: m.Content}
	case domain.RoleAssistant:
		return messageRecord{Type: "ai", Content: m.Content}
	default:
		return messageRecord{Type: "system", Content: m.Content}
	}
}

func fromRecord(r messageRecord) domain.Message {
	switch r.Type {
	case "human":
		return domain.UserMessage(r.Content)
	case "ai":
		return domain.AssistantMessage(r.Content)
	default:
		return domain.SystemMessage(r.Content)
	}
}

type entry struct {
	messages   []domain.Message
	createdAt  time.Time
	lastAccess time.Time
}

// FileStore implements Store over one JSON file per session. Every save
// rewrites the whole history via a temp file and rename, so the durable record
// is never observed partially written.
type FileStore struct {
	dir string

	mu       sync.RWMutex
	sessions map[string]*entry
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir and loads any existing
// session files into memory.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sessions dir: %w", err)
	}

	s := &FileStore{
		dir:      dir,
		sessions: make(map[string]*entry),
	}
	s.mu.Lock()
	s.loadLocked()
	s.mu.Unlock()

	log.Printf("INFO: session store loaded %d sessions from %s", s.Count(), dir)
	return s, nil
}

// loadLocked reads every session file under dir into the in-memory map.
// Unreadable files are skipped, not fatal.
func (s *FileStore) loadLocked() {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		log.Printf("ERROR: failed to read sessions dir: %v", err)
		return
	}

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(f.Name(), ".json")
		rec, err := s.readRecord(id)
		if err != nil {
			log.Printf("ERROR: failed to load session %s: %v", id, err)
			continue
		}
		messages := make([]domain.Message, 0, len(rec.Messages))
		for _, m := range rec.Messages {
			messages = append(messages, fromRecord(m))
		}
		s.sessions[id] = &entry{
			messages:   messages,
			createdAt:  rec.CreatedAt,
			lastAccess: time.Now(),
		}
	}
}

func (s *FileStore) readRecord(sessionID string) (*sessionRecord, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		return nil, err
	}
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode session record: %w", err)
	}
	return &rec, nil
}

func (s *FileStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}

// writeRecord serializes to a temp file and renames over the target path.
func (s *FileStore) writeRecord(sessionID string, e *entry) error {
	rec := sessionRecord{
		SessionID: sessionID,
		Messages:  make([]messageRecord, 0, len(e.messages)),
		CreatedAt: e.createdAt,
	}
	for _, m := range e.messages {
		rec.Messages = append(rec.Messages, toRecord(m))
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	target := s.path(sessionID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Create generates a fresh session id, initializes an empty history and
// persists it immediately. A persistence failure is logged but does not roll
// back the in-memory creation.
func (s *FileStore) Create(ctx context.Context) (string, error) {
	sessionID := uuid.New().String()
	now := time.Now()
	e := &entry{messages: []domain.Message{}, createdAt: now, lastAccess: now}

	s.mu.Lock()
	s.sessions[sessionID] = e
	if err := s.writeRecord(sessionID, e); err != nil {
		log.Printf("ERROR: failed to persist new session %s: %v", sessionID, err)
	}
	s.mu.Unlock()

	log.Printf("INFO: created session %s", sessionID)
	return sessionID, nil
}

// Get returns the in-memory sequence if resident; on a cold lookup it reloads
// the store from durable records before retrying.
func (s *FileStore) Get(ctx context.Context, sessionID string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		s.loadLocked()
		e, ok = s.sessions[sessionID]
		if !ok {
			return nil, ErrNotFound
		}
	}

	e.lastAccess = time.Now()
	out := make([]domain.Message, len(e.messages))
	copy(out, e.messages)
	return out, nil
}

// Save replaces the full message sequence for the session, creating it if
// absent, and atomically rewrites the durable record.
func (s *FileStore) Save(ctx context.Context, sessionID string, messages []domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e, ok := s.sessions[sessionID]
	if !ok {
		e = &entry{createdAt: now}
		s.sessions[sessionID] = e
	}
	e.messages = make([]domain.Message, len(messages))
	copy(e.messages, messages)
	e.lastAccess = now

	if err := s.writeRecord(sessionID, e); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}
	return nil
}

// Delete removes the in-memory entry and the durable file. A missing session
// is reported as ErrNotFound, distinct from an I/O failure.
func (s *FileStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, sessionID)

	if err := os.Remove(s.path(sessionID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	log.Printf("INFO: deleted session %s", sessionID)
	return nil
}

// Clear empties the session's history and persists the empty record.
func (s *FileStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	e.messages = []domain.Message{}
	e.lastAccess = time.Now()

	if err := s.writeRecord(sessionID, e); err != nil {
		return fmt.Errorf("failed to clear session %s: %w", sessionID, err)
	}
	return nil
}

// List returns summaries ordered by most recent access first.
func (s *FileStore) List(ctx context.Context) ([]domain.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.SessionSummary, 0, len(s.sessions))
	for id, e := range s.sessions {
		summaries = append(summaries, domain.SessionSummary{
			SessionID:    id,
			MessageCount: len(e.messages),
			LastAccess:   e.lastAccess,
			CreatedAt:    e.createdAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastAccess.After(summaries[j].LastAccess)
	})
	return summaries, nil
}

// Count returns the number of resident sessions.
func (s *FileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
