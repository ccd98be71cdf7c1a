package llm

import (
	"context"
	"fmt"

	"github.com/prepwise/prepwise/config"
)

// Message is one entry of a chat conversation.
type Message struct {
	Role       string     `json:"role"` // user, assistant, tool
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a structured request from the model to invoke a declared tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON argument payload
}

// Tool declares a callable function to the model.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema
}

// Options tunes a single chat call.
type Options struct {
	Temperature *float64
	MaxTokens   int
	JSONMode    bool
}

// Completion is the model's reply plus token usage.
type Completion struct {
	Message          Message
	PromptTokens     int64
	CompletionTokens int64
}

// Provider is the language-model capability. Implementations hold no
// per-request state and are safe for concurrent use.
type Provider interface {
	Chat(ctx context.Context, model string, messages []Message, tools []Tool, opts Options) (Completion, error)
}

// NewProvider creates a Provider from config, keyed by provider type.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	for _, provider := range cfg.Providers {
		switch provider.Type {
		case "openai", "openai-compatible", "":
			return NewOpenAIProvider(provider), nil
		default:
			return nil, fmt.Errorf("unsupported llm provider type: %s", provider.Type)
		}
	}
	return nil, fmt.Errorf("no llm providers configured")
}

// ExtractFirstJSON attempts to find the first top-level JSON object in a string.
// Models wrap JSON in prose or code fences often enough that callers should
// pass completions through this before unmarshaling.
func ExtractFirstJSON(s string) string {
	start := -1
	depth := 0
	for i, ch := range s {
		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == '}' {
			if depth > 0 {
				depth--
			}
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return s
}
