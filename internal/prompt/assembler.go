// Package prompt builds the message lists sent to the completion capability.
package prompt

import (
	"fmt"
	"log"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/xhzhu1024/docqa/domain"
)

const plainSystem = `You are a professional assistant. Answer the user's question.

Use your knowledge to give a helpful, accurate and thorough answer.
You may analyze different aspects of the question and offer relevant insight.
If the question is ambiguous, ask for clarification or give the best answer based on your understanding.
If you are unsure about something, say so honestly instead of making it up.`

const localTemplate = `You are a professional assistant. Answer the user's question.

I have provided relevant document excerpts for reference. Use them to supplement your answer, but do not feel limited to them.
If the documents lack enough information, answer thoroughly from your own knowledge.
If the documents are relevant, prefer their content; you may add extra information to make the answer more complete.
If the documents are unrelated to the question, answer directly from your own knowledge.

Document excerpts:
%s

Chat history:
%s`

const webTemplate = `You are a professional assistant. Answer the user's question.

I have provided web search results for reference. Use them to supplement your answer, but do not feel limited to them.
If the results lack enough information, answer thoroughly from your own knowledge.
If the results are relevant, prefer their content; you may add extra information to make the answer more complete.
If the results are unrelated to the question, answer directly from your own knowledge.
Cite sources where appropriate, especially for recent information or specific data.

Web search results:
%s

Chat history:
%s`

const hybridTemplate = `You are a professional assistant. Answer the user's question.

I have provided reference material: local document content first, then web search results. Use it to supplement your answer, but do not feel limited to it.
If the material lacks enough detail, answer thoroughly from your own knowledge.
If the material is relevant, prefer its content; you may add extra information to make the answer more complete.
If the material is unrelated to the question, answer directly from your own knowledge.
Where helpful, note whether information came from the local documents or the web.

Reference material:
%s

Chat history:
%s`

// GuideSystem is the system preamble for the tour-guide orchestrator.
const GuideSystem = `You are a professional tour guide assistant providing travel advice and information for destinations worldwide.

You are good at:
1. Recommending destinations, attractions and itineraries
2. Explaining the culture and history of a destination
3. Sharing advice on local food, lodging and transport
4. Answering common travel questions and pointing out caveats
5. Tailoring suggestions to the user's budget, schedule and interests

Use the available tools to fetch current information. If your own knowledge suffices, answer directly.
When recommending attractions or activities, give concrete details and practical advice.
Be friendly and professional, like an enthusiastic local guide.`

// Assembler builds completion message lists, trimming history to a token
// budget.
type Assembler struct {
	tokenBudget int
	encoding    *tiktoken.Tiktoken
}

// NewAssembler creates an assembler. A budget of zero disables trimming.
func NewAssembler(tokenBudget int) *Assembler {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		log.Printf("WARN: tiktoken encoding unavailable, falling back to byte estimate: %v", err)
		enc = nil
	}
	return &Assembler{tokenBudget: tokenBudget, encoding: enc}
}

// Plain builds the no-context message list: system preamble, prior turns, and
// the question.
func (a *Assembler) Plain(prior []domain.Message, question string) []domain.Message {
	prior = a.trim(prior)
	messages := make([]domain.Message, 0, len(prior)+2)
	messages = append(messages, domain.SystemMessage(plainSystem))
	messages = append(messages, prior...)
	messages = append(messages, domain.UserMessage(question))
	return messages
}

// WithContext builds the message list for a retrieval mode: a system message
// embedding the context block and formatted history, then the question.
func (a *Assembler) WithContext(mode domain.Mode, contextBlock string, prior []domain.Message, question string) []domain.Message {
	var template string
	switch mode {
	case domain.ModeWebOnly:
		template = webTemplate
	case domain.ModeHybrid:
		template = hybridTemplate
	default:
		template = localTemplate
	}

	system := fmt.Sprintf(template, contextBlock, FormatHistory(a.trim(prior)))
	return []domain.Message{
		domain.SystemMessage(system),
		domain.UserMessage(question),
	}
}

// Guide builds the tour-guide message list: guide preamble, prior turns, and
// the question.
func (a *Assembler) Guide(prior []domain.Message, question string) []domain.Message {
	prior = a.trim(prior)
	messages := make([]domain.Message, 0, len(prior)+2)
	messages = append(messages, domain.SystemMessage(GuideSystem))
	messages = append(messages, prior...)
	messages = append(messages, domain.UserMessage(question))
	return messages
}

// FormatHistory renders turns as alternating labeled lines, preserving order
// and role attribution.
func FormatHistory(messages []domain.Message) string {
	var lines []string
	for _, m := range messages {
		switch m.Role {
		case domain.RoleUser:
			lines = append(lines, "Human: "+m.Content)
		case domain.RoleAssistant:
			lines = append(lines, "Assistant: "+m.Content)
		}
	}
	return strings.Join(lines, "\n")
}

// trim drops the oldest turns until the remaining history fits the token
// budget. The current question is never part of prior and is never dropped.
func (a *Assembler) trim(prior []domain.Message) []domain.Message {
	if a.tokenBudget <= 0 {
		return prior
	}
	for len(prior) > 0 && a.countTokens(FormatHistory(prior)) > a.tokenBudget {
		prior = prior[1:]
	}
	return prior
}

func (a *Assembler) countTokens(text string) int {
	if a.encoding != nil {
		return len(a.encoding.Encode(text, nil, nil))
	}
	return len(text) / 4
}
