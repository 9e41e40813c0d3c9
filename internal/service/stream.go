package service

import (
	"context"
	"fmt"
	"log"

	"github.com/xhzhu1024/docqa/domain"
)

// StreamEmitter receives incremental answer text. Exactly one call carries a
// non-nil metadata record and it is always the last. A non-nil error from the
// emitter aborts the stream.
type StreamEmitter func(chunk string, meta *domain.StreamMetadata) error

// ProcessQuestionStream answers one question, emitting the answer
// incrementally. The final emit carries the end-of-stream metadata; on
// completion failure a single error frame is emitted and nothing is
// persisted.
func (s *Service) ProcessQuestionStream(ctx context.Context, req domain.QuestionRequest, emit StreamEmitter) error {
	if err := req.Validate(); err != nil {
		return err
	}

	model, temperature := s.resolveDefaults(req)
	sessionID, history, unlock := s.beginSession(ctx, req.HistoryID)
	defer unlock()

	history = append(history, domain.UserMessage(req.Question))
	prior := history[:len(history)-1]

	mode := domain.SelectMode(s.webRequested(req, model), s.localAvailable(ctx))
	log.Printf("INFO: streaming question in mode %s (session %s): %s", mode, sessionID, truncateLog(req.Question))

	messages, sources, webSources := s.assemble(ctx, mode, req.Question, prior, req.SearchSettings)

	llmCtx, cancel := context.WithTimeout(ctx, s.config.LLMTimeout)
	defer cancel()

	answer, err := s.completer.CompleteStream(llmCtx, messages, model, temperature, func(chunkCtx context.Context, chunk string) error {
		if chunk == "" {
			return nil
		}
		return emit(chunk, nil)
	})
	if err != nil {
		if ctx.Err() != nil {
			// The consumer went away; nothing to persist, no one to tell.
			log.Printf("INFO: stream cancelled (session %s): %v", sessionID, ctx.Err())
			return ctx.Err()
		}
		log.Printf("ERROR: streaming completion failed (session %s): %v", sessionID, err)
		return emit(fmt.Sprintf("Error processing your question: %v", err), &domain.StreamMetadata{
			Done:      true,
			HistoryID: sessionID,
			Error:     err.Error(),
		})
	}

	history = append(history, domain.AssistantMessage(answer))
	if err := s.sessions.Save(ctx, sessionID, history); err != nil {
		log.Printf("ERROR: failed to persist session %s: %v", sessionID, err)
	}

	return emit("", &domain.StreamMetadata{
		Done:       true,
		Sources:    sources,
		WebSources: webSources,
		HistoryID:  sessionID,
	})
}
