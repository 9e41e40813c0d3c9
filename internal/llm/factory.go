package llm

import (
	"log"
	"os"
)

const (
	// EnvMode is the environment variable name for mode selection.
	EnvMode = "DOCQA_MODE"
	// ModeMock indicates the mock client should be used.
	ModeMock = "MOCK"
)

// NewClient creates a completion client based on the DOCQA_MODE environment
// variable. If DOCQA_MODE=MOCK, returns a MockClient; otherwise a real
// OpenAI-compatible client.
func NewClient(apiKey, baseURL string) (Client, error) {
	if os.Getenv(EnvMode) == ModeMock {
		log.Println("DOCQA_MODE=MOCK detected, using mock completion client")
		return NewMockClient(), nil
	}
	return NewOpenAIClient(apiKey, baseURL)
}
