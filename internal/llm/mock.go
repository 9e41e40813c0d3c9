package llm

import (
	"context"
	"fmt"

	"github.com/xhzhu1024/docqa/domain"
	"github.com/xhzhu1024/docqa/internal/tools"
)

// MockClient is a mock implementation of Client for development without API
// credentials.
type MockClient struct{}

// NewMockClient creates a new mock completion client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

var _ Client = (*MockClient)(nil)

// Complete returns a canned response echoing the last user message.
func (m *MockClient) Complete(ctx context.Context, messages []domain.Message, model string, temperature float64) (string, error) {
	return m.generate(messages), nil
}

// CompleteStream simulates streaming by chunking the canned response.
func (m *MockClient) CompleteStream(ctx context.Context, messages []domain.Message, model string, temperature float64, fn StreamFunc) (string, error) {
	answer := m.generate(messages)
	for _, chunk := range splitIntoChunks(answer, 10) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		if err := fn(ctx, chunk); err != nil {
			return "", err
		}
	}
	return answer, nil
}

// CompleteWithTools returns a canned response without invoking any tools.
func (m *MockClient) CompleteWithTools(ctx context.Context, messages []domain.Message, model string, temperature float64, toolset []tools.Tool) (string, []tools.Invocation, error) {
	if len(toolset) > 0 {
		return fmt.Sprintf("[MOCK] I would consider calling tool %q to answer this.", toolset[0].Name), nil, nil
	}
	return m.generate(messages), nil, nil
}

func (m *MockClient) generate(messages []domain.Message) string {
	var lastUser string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			lastUser = messages[i].Content
			break
		}
	}
	if lastUser == "" {
		return "[MOCK] This is a mock response from the completion client."
	}
	return fmt.Sprintf("[MOCK] Received your question: %q. This is a mock response.", truncate(lastUser, 100))
}

func splitIntoChunks(s string, chunkSize int) []string {
	if len(s) == 0 {
		return []string{""}
	}
	var chunks []string
	for i := 0; i < len(s); i += chunkSize {
		end := i + chunkSize
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[i:end])
	}
	return chunks
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
