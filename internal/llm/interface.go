// Package llm provides an abstraction for the completion capability.
package llm

import (
	"context"

	"github.com/xhzhu1024/docqa/domain"
	"github.com/xhzhu1024/docqa/internal/tools"
)

// StreamFunc is called for each text increment of a streaming completion.
type StreamFunc func(ctx context.Context, chunk string) error

// Completer is the text-generation capability, blocking or streaming.
type Completer interface {
	// Complete returns the full answer for the message list.
	Complete(ctx context.Context, messages []domain.Message, model string, temperature float64) (string, error)

	// CompleteStream forwards increments through fn as they arrive and
	// returns the accumulated answer.
	CompleteStream(ctx context.Context, messages []domain.Message, model string, temperature float64, fn StreamFunc) (string, error)
}

// ToolCompleter generates an answer with access to a tool set. The
// implementation owns the tool-calling loop; callers only receive the final
// answer and the invocation records.
type ToolCompleter interface {
	CompleteWithTools(ctx context.Context, messages []domain.Message, model string, temperature float64, toolset []tools.Tool) (string, []tools.Invocation, error)
}

// Client is a completion client supporting both plain and tool-augmented
// generation.
type Client interface {
	Completer
	ToolCompleter
}
