// Package service implements the session-scoped question-answering
// orchestration engine.
package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/xhzhu1024/docqa/config"
	"github.com/xhzhu1024/docqa/domain"
	"github.com/xhzhu1024/docqa/internal/llm"
	"github.com/xhzhu1024/docqa/internal/prompt"
	"github.com/xhzhu1024/docqa/internal/retrieval"
	"github.com/xhzhu1024/docqa/internal/session"
	"github.com/xhzhu1024/docqa/internal/tools"
	"github.com/xhzhu1024/docqa/policy"
)

// Service orchestrates question answering over sessions, retrieval
// collaborators and the completion capability. Local and web retrievers may
// be nil when the capability is unavailable.
type Service struct {
	config       *config.Config
	sessions     session.Store
	local        retrieval.LocalRetriever
	web          retrieval.WebRetriever
	completer    llm.Client
	policyEngine *policy.Engine
	prompts      *prompt.Assembler
	guideTools   []tools.Tool

	// One writer per session id around the load-append-save cycle.
	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// New creates a service with its collaborators injected.
func New(cfg *config.Config, sessions session.Store, local retrieval.LocalRetriever, web retrieval.WebRetriever, completer llm.Client, policyEngine *policy.Engine, prompts *prompt.Assembler, guideTools []tools.Tool) *Service {
	return &Service{
		config:       cfg,
		sessions:     sessions,
		local:        local,
		web:          web,
		completer:    completer,
		policyEngine: policyEngine,
		prompts:      prompts,
		guideTools:   guideTools,
		locks:        make(map[string]*sync.Mutex),
	}
}

// lockSession serializes request processing per session id. Returns the
// unlock function.
func (s *Service) lockSession(sessionID string) func() {
	s.lockMu.Lock()
	mu, ok := s.locks[sessionID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[sessionID] = mu
	}
	s.lockMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// resolveDefaults fills in the configured model and temperature for absent
// request fields.
func (s *Service) resolveDefaults(req domain.QuestionRequest) (string, float64) {
	model := req.Model
	if model == "" {
		model = s.config.DefaultModel
	}
	temperature := s.config.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	return model, temperature
}

// webRequested reports whether this request should consult web search: the
// explicit flag, or the designated web-capable model, both gated on the
// capability being globally available.
func (s *Service) webRequested(req domain.QuestionRequest, model string) bool {
	if !s.config.EnableWebSearch || s.web == nil {
		return false
	}
	return req.UseWebSearch || model == s.config.WebCapableModel
}

// localAvailable reports whether the local index is initialized and
// non-empty.
func (s *Service) localAvailable(ctx context.Context) bool {
	return s.local != nil && s.local.Ready(ctx)
}

// beginSession resolves the session for a request and acquires its lock. The
// history is loaded inside the locked region, so concurrent requests on one
// session each observe the other's committed turns instead of a shared stale
// snapshot. A fresh session is created when the id is absent or unknown.
// Callers must call the returned unlock.
func (s *Service) beginSession(ctx context.Context, historyID string) (string, []domain.Message, func()) {
	if historyID != "" {
		unlock := s.lockSession(historyID)
		messages, err := s.sessions.Get(ctx, historyID)
		if err == nil {
			return historyID, messages, unlock
		}
		unlock()
		if !errors.Is(err, session.ErrNotFound) {
			log.Printf("ERROR: failed to load session %s: %v", historyID, err)
		}
	}

	id, err := s.sessions.Create(ctx)
	if err != nil {
		log.Printf("ERROR: failed to create session: %v", err)
	}
	return id, nil, s.lockSession(id)
}

// releaseSessionLock drops the per-session mutex entry so the lock map does
// not grow without bound. Called with the session lock held, after the
// session itself is gone; a racing request on the same id re-creates the
// entry and then finds no session.
func (s *Service) releaseSessionLock(sessionID string) {
	s.lockMu.Lock()
	delete(s.locks, sessionID)
	s.lockMu.Unlock()
}
