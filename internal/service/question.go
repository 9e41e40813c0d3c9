package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/xhzhu1024/docqa/domain"
	"github.com/xhzhu1024/docqa/internal/retrieval"
	"github.com/xhzhu1024/docqa/policy"
)

// previewLength bounds the content preview carried by web source records.
const previewLength = 200

// ProcessQuestion answers one question against a session. Collaborator
// failures during generation are converted into a degraded result; only
// request validation produces an error.
func (s *Service) ProcessQuestion(ctx context.Context, req domain.QuestionRequest) (*domain.AnswerResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	model, temperature := s.resolveDefaults(req)
	sessionID, history, unlock := s.beginSession(ctx, req.HistoryID)
	defer unlock()

	history = append(history, domain.UserMessage(req.Question))
	prior := history[:len(history)-1]

	mode := domain.SelectMode(s.webRequested(req, model), s.localAvailable(ctx))
	log.Printf("INFO: processing question in mode %s (session %s): %s", mode, sessionID, truncateLog(req.Question))

	messages, sources, webSources := s.assemble(ctx, mode, req.Question, prior, req.SearchSettings)

	llmCtx, cancel := context.WithTimeout(ctx, s.config.LLMTimeout)
	defer cancel()

	answer, err := s.completer.Complete(llmCtx, messages, model, temperature)
	if err != nil {
		log.Printf("ERROR: completion failed (session %s): %v", sessionID, err)
		return s.degradedResult(sessionID, err), nil
	}

	history = append(history, domain.AssistantMessage(answer))
	if err := s.sessions.Save(ctx, sessionID, history); err != nil {
		// Availability over durability: the caller still gets the answer.
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

// degradedResult shapes a collaborator failure as a best-effort answer so the
// caller never sees a hard failure after validation passed.
func (s *Service) degradedResult(sessionID string, err error) *domain.AnswerResult {
	return &domain.AnswerResult{
		Answer:    fmt.Sprintf("Error processing your question: %v", err),
		Sources:   []string{},
		History:   []domain.HistoryEntry{},
		HistoryID: sessionID,
	}
}

// assemble runs the retrieval strategy for the mode and builds the completion
// message list plus the provenance lists. Retrieval failures and empty web
// results degrade to the plain strategy.
func (s *Service) assemble(ctx context.Context, mode domain.Mode, question string, prior []domain.Message, settings *domain.SearchSettings) ([]domain.Message, []string, []domain.WebSource) {
	switch mode {
	case domain.ModeLocalOnly:
		return s.assembleLocal(ctx, question, prior)
	case domain.ModeWebOnly:
		return s.assembleWeb(ctx, question, prior, settings)
	case domain.ModeHybrid:
		return s.assembleHybrid(ctx, question, prior, settings)
	default:
		return s.prompts.Plain(prior, question), []string{}, nil
	}
}

func (s *Service) assembleLocal(ctx context.Context, question string, prior []domain.Message) ([]domain.Message, []string, []domain.WebSource) {
	snippets, err := s.searchLocal(ctx, question, s.config.LocalK)
	if err != nil {
		log.Printf("WARN: local retrieval failed, falling back to plain strategy: %v", err)
		return s.prompts.Plain(prior, question), []string{}, nil
	}
	if len(snippets) == 0 {
		log.Printf("INFO: local retrieval returned no snippets, falling back to plain strategy")
		return s.prompts.Plain(prior, question), []string{}, nil
	}

	contents, sources := collectSnippets(snippets)
	contextBlock := strings.Join(contents, "\n\n")
	return s.prompts.WithContext(domain.ModeLocalOnly, contextBlock, prior, question), sources, nil
}

func (s *Service) assembleWeb(ctx context.Context, question string, prior []domain.Message, settings *domain.SearchSettings) ([]domain.Message, []string, []domain.WebSource) {
	results := s.searchWeb(ctx, question, settings, s.config.WebMaxResults)
	if len(results) == 0 {
		log.Printf("INFO: web search returned no results, falling back to plain strategy")
		return s.prompts.Plain(prior, question), []string{}, nil
	}

	contents, webSources := collectWebResults(results)
	contextBlock := strings.Join(contents, "\n\n")
	return s.prompts.WithContext(domain.ModeWebOnly, contextBlock, prior, question), []string{}, webSources
}

func (s *Service) assembleHybrid(ctx context.Context, question string, prior []domain.Message, settings *domain.SearchSettings) ([]domain.Message, []string, []domain.WebSource) {
	snippets, err := s.searchLocal(ctx, question, s.config.HybridLocalK)
	if err != nil {
		log.Printf("WARN: local retrieval failed in hybrid mode: %v", err)
		snippets = nil
	}
	localContents, sources := collectSnippets(snippets)

	// Fewer web results by default since a second source exists.
	results := s.searchWeb(ctx, question, settings, s.config.HybridWebResults)
	webContents, webSources := collectWebResults(results)

	if len(localContents) == 0 && len(webContents) == 0 {
		log.Printf("INFO: hybrid retrieval returned nothing, falling back to plain strategy")
		return s.prompts.Plain(prior, question), []string{}, nil
	}

	// Local snippets precede web snippets: source priority signal to the model.
	contextBlock := strings.Join(append(localContents, webContents...), "\n\n")
	return s.prompts.WithContext(domain.ModeHybrid, contextBlock, prior, question), sources, webSources
}

func (s *Service) searchLocal(ctx context.Context, question string, k int) ([]retrieval.Snippet, error) {
	searchCtx, cancel := context.WithTimeout(ctx, s.config.SearchTimeout)
	defer cancel()
	return s.local.Search(searchCtx, question, k)
}

// searchWeb runs the web search, consulting the policy engine first. Failures
// and policy denials yield an empty result set; callers treat that as the
// plain-strategy fallback.
func (s *Service) searchWeb(ctx context.Context, question string, settings *domain.SearchSettings, defaultMax int) []retrieval.WebResult {
	opts := searchOptions(settings, defaultMax)

	if s.policyEngine != nil {
		decision, err := s.policyEngine.Evaluate(ctx, policy.Input{
			Query:          question,
			IncludeDomains: opts.IncludeDomains,
			ExcludeDomains: opts.ExcludeDomains,
		})
		if err != nil {
			log.Printf("WARN: search policy evaluation failed: %v", err)
		} else if decision != "allow" {
			log.Printf("WARN: web search denied by policy for query: %s", truncateLog(question))
			return nil
		}
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.config.SearchTimeout)
	defer cancel()

	results, err := s.web.Search(searchCtx, question, opts)
	if err != nil {
		log.Printf("WARN: web search failed: %v", err)
		return nil
	}
	return results
}

func searchOptions(settings *domain.SearchSettings, defaultMax int) retrieval.WebSearchOptions {
	opts := retrieval.WebSearchOptions{
		SearchDepth: "basic",
		MaxResults:  defaultMax,
	}
	if settings == nil {
		return opts
	}
	if settings.SearchDepth != "" {
		opts.SearchDepth = settings.SearchDepth
	}
	if settings.MaxResults > 0 {
		opts.MaxResults = settings.MaxResults
	}
	opts.IncludeDomains = settings.IncludeDomains
	opts.ExcludeDomains = settings.ExcludeDomains
	return opts
}

// collectSnippets extracts content and deduplicated sources in retrieval
// order.
func collectSnippets(snippets []retrieval.Snippet) ([]string, []string) {
	contents := make([]string, 0, len(snippets))
	sources := make([]string, 0, len(snippets))
	seen := make(map[string]bool)
	for _, sn := range snippets {
		contents = append(contents, sn.Content)
		if sn.Source != "" && !seen[sn.Source] {
			seen[sn.Source] = true
			sources = append(sources, sn.Source)
		}
	}
	return contents, sources
}

func collectWebResults(results []retrieval.WebResult) ([]string, []domain.WebSource) {
	contents := make([]string, 0, len(results))
	webSources := make([]domain.WebSource, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content)
		webSources = append(webSources, domain.WebSource{
			URL:            r.URL,
			Title:          r.Title,
			ContentPreview: preview(r.Content),
		})
	}
	return contents, webSources
}

// preview truncates content for source records, marking truncation with an
// ellipsis.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}

func truncateLog(s string) string {
	runes := []rune(s)
	if len(runes) <= 50 {
		return s
	}
	return string(runes[:50]) + "..."
}
