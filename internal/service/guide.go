package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/xhzhu1024/docqa/domain"
	"github.com/xhzhu1024/docqa/internal/retrieval"
	"github.com/xhzhu1024/docqa/internal/tools"
)

const amapAttribution = "\n\n(Location data provided by Amap)"

// ProcessGuideQuestion answers one question in the tour-guide persona. The
// completion runs with the configured tool set; source attribution is derived
// from the tools the model actually invoked. With no tools configured the
// guide answers from its own knowledge.
func (s *Service) ProcessGuideQuestion(ctx context.Context, req domain.QuestionRequest) (*domain.AnswerResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	model, temperature := s.resolveDefaults(req)
	sessionID, history, unlock := s.beginSession(ctx, req.HistoryID)
	defer unlock()

	history = append(history, domain.UserMessage(req.Question))
	prior := history[:len(history)-1]

	log.Printf("INFO: processing guide question (session %s): %s", sessionID, truncateLog(req.Question))
	messages := s.prompts.Guide(prior, req.Question)

	llmCtx, cancel := context.WithTimeout(ctx, s.config.LLMTimeout)
	defer cancel()

	var (
		answer      string
		invocations []tools.Invocation
		err         error
	)
	if len(s.guideTools) > 0 {
		answer, invocations, err = s.completer.CompleteWithTools(llmCtx, messages, model, temperature, s.guideTools)
	} else {
		answer, err = s.completer.Complete(llmCtx, messages, model, temperature)
	}
	if err != nil {
		log.Printf("ERROR: guide completion failed (session %s): %v", sessionID, err)
		return s.degradedResult(sessionID, err), nil
	}

	sources, webSources, usedGeocode := classifyInvocations(invocations)
	if usedGeocode {
		answer += amapAttribution
	}

	history = append(history, domain.AssistantMessage(answer))
	if err := s.sessions.Save(ctx, sessionID, history); err != nil {
		log.Printf("ERROR: failed to persist session %s: %v", sessionID, err)
	}

	return &domain.AnswerResult{
		Answer:     answer,
		Sources:    sources,
		WebSources: webSources,
		History:    domain.FormatHistory(history),
		HistoryID:  sessionID,
	}, nil
}

// ProcessGuideQuestionStream streams a tour-guide answer. Tool calling and
// streaming do not compose, so the streamed variant answers toolless from the
// guide persona.
func (s *Service) ProcessGuideQuestionStream(ctx context.Context, req domain.QuestionRequest, emit StreamEmitter) error {
	if err := req.Validate(); err != nil {
		return err
	}

	model, temperature := s.resolveDefaults(req)
	sessionID, history, unlock := s.beginSession(ctx, req.HistoryID)
	defer unlock()

	history = append(history, domain.UserMessage(req.Question))
	prior := history[:len(history)-1]

	log.Printf("INFO: streaming guide question (session %s): %s", sessionID, truncateLog(req.Question))
	messages := s.prompts.Guide(prior, req.Question)

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
			log.Printf("INFO: guide stream cancelled (session %s): %v", sessionID, ctx.Err())
			return ctx.Err()
		}
		log.Printf("ERROR: streaming guide completion failed (session %s): %v", sessionID, err)
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
		Done:      true,
		Sources:   []string{},
		HistoryID: sessionID,
	})
}

// classifyInvocations derives source attribution from the tool calls made
// during a guide completion.
func classifyInvocations(invocations []tools.Invocation) ([]string, []domain.WebSource, bool) {
	sources := []string{}
	var webSources []domain.WebSource
	usedGeocode := false
	seen := make(map[string]bool)

	for _, inv := range invocations {
		if inv.Error != "" {
			continue
		}
		switch inv.Tool {
		case tools.NameDestinationSearch:
			var out struct {
				Results []retrieval.Snippet `json:"results"`
			}
			if err := json.Unmarshal(inv.Result, &out); err != nil {
				log.Printf("WARN: unreadable destination_search result: %v", err)
				continue
			}
			for _, sn := range out.Results {
				if sn.Source != "" && !seen[sn.Source] {
					seen[sn.Source] = true
					sources = append(sources, sn.Source)
				}
			}
		case tools.NameWebSearch:
			var out struct {
				Results []retrieval.WebResult `json:"results"`
			}
			if err := json.Unmarshal(inv.Result, &out); err != nil {
				log.Printf("WARN: unreadable web_search result: %v", err)
				continue
			}
			for _, r := range out.Results {
				webSources = append(webSources, domain.WebSource{
					URL:            r.URL,
					Title:          r.Title,
					ContentPreview: preview(r.Content),
				})
			}
		case tools.NameGeocode:
			usedGeocode = true
		}
	}
	return sources, webSources, usedGeocode
}
