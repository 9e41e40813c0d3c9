package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/xhzhu1024/docqa/domain"
	"github.com/xhzhu1024/docqa/internal/tools"
)

// maxToolRounds bounds the tool-calling loop so a model that keeps requesting
// tools cannot spin forever.
const maxToolRounds = 5

// OpenAIClient implements Client over an OpenAI-compatible chat API.
type OpenAIClient struct {
	model *openai.LLM
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client for the given API credentials. baseURL may
// be empty for the default endpoint.
func NewOpenAIClient(apiKey, baseURL string) (*OpenAIClient, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return &OpenAIClient{model: model}, nil
}

func toContent(messages []domain.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		out = append(out, llms.TextParts(chatMessageType(m.Role), m.Content))
	}
	return out
}

func chatMessageType(role domain.Role) llms.ChatMessageType {
	switch role {
	case domain.RoleUser:
		return llms.ChatMessageTypeHuman
	case domain.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeSystem
	}
}

// Complete sends a blocking chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, messages []domain.Message, model string, temperature float64) (string, error) {
	resp, err := c.model.GenerateContent(ctx, toContent(messages),
		llms.WithModel(model),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// CompleteStream sends a streaming chat completion request, forwarding each
// increment through fn.
func (c *OpenAIClient) CompleteStream(ctx context.Context, messages []domain.Message, model string, temperature float64, fn StreamFunc) (string, error) {
	var full strings.Builder
	_, err := c.model.GenerateContent(ctx, toContent(messages),
		llms.WithModel(model),
		llms.WithTemperature(temperature),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			full.Write(chunk)
			return fn(ctx, string(chunk))
		}),
	)
	if err != nil {
		return "", fmt.Errorf("streaming completion failed: %w", err)
	}
	return full.String(), nil
}

// CompleteWithTools runs the tool-calling loop: the model may request tool
// invocations, which are executed and fed back until it produces a final
// answer or the round limit is hit.
func (c *OpenAIClient) CompleteWithTools(ctx context.Context, messages []domain.Message, model string, temperature float64, toolset []tools.Tool) (string, []tools.Invocation, error) {
	llmTools := make([]llms.Tool, 0, len(toolset))
	registry := tools.NewRegistry()
	for _, t := range toolset {
		if err := registry.Register(t); err != nil {
			return "", nil, fmt.Errorf("failed to register tool: %w", err)
		}
		llmTools = append(llmTools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	content := toContent(messages)
	var invocations []tools.Invocation

	for round := 0; round < maxToolRounds; round++ {
		resp, err := c.model.GenerateContent(ctx, content,
			llms.WithModel(model),
			llms.WithTemperature(temperature),
			llms.WithTools(llmTools),
		)
		if err != nil {
			return "", invocations, fmt.Errorf("tool completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", invocations, fmt.Errorf("tool completion returned no choices")
		}

		choice := resp.Choices[0]
		if len(choice.ToolCalls) == 0 {
			return choice.Content, invocations, nil
		}

		assistantMsg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		for _, tc := range choice.ToolCalls {
			assistantMsg.Parts = append(assistantMsg.Parts, tc)
		}
		content = append(content, assistantMsg)

		for _, tc := range choice.ToolCalls {
			args := json.RawMessage(tc.FunctionCall.Arguments)
			result, err := registry.Execute(ctx, tc.FunctionCall.Name, args)

			inv := tools.Invocation{Tool: tc.FunctionCall.Name, Args: args, Result: result}
			toolContent := string(result)
			if err != nil {
				log.Printf("WARN: tool %s failed: %v", tc.FunctionCall.Name, err)
				inv.Error = err.Error()
				toolContent = fmt.Sprintf(`{"error":%q}`, err.Error())
			}
			invocations = append(invocations, inv)

			content = append(content, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: tc.ID,
					Name:       tc.FunctionCall.Name,
					Content:    toolContent,
				}},
			})
		}
	}

	return "", invocations, fmt.Errorf("tool completion exceeded %d rounds", maxToolRounds)
}
