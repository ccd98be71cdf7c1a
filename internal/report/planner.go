package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/prepwise/prepwise/internal/llm"
	"github.com/prepwise/prepwise/internal/telemetry"
)

// SearchToolName is the single tool declared to the planning model.
const SearchToolName = "search"

func searchToolDecl() llm.Tool {
	return llm.Tool{
		Name:        SearchToolName,
		Description: "Search the web and return the top result as {url, content} records.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query string.",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Planner drives one LLM call that turns the weakness list into search
// tool-call requests plus a preliminary narrative.
type Planner struct {
	provider llm.Provider
	model    string
	logger   *log.Logger
}

func NewPlanner(provider llm.Provider, model string, logger *log.Logger) *Planner {
	if logger == nil {
		logger = log.New(log.Writer(), "[PLANNER] ", log.LstdFlags)
	}
	return &Planner{provider: provider, model: model, logger: logger}
}

// PlanResult carries the assistant message and the parsed call requests.
type PlanResult struct {
	Message llm.Message
	Calls   []ToolCallRequest
}

// Plan asks the model for two search queries per weak topic. With no
// weaknesses it short-circuits without touching the model at all.
func (p *Planner) Plan(ctx context.Context, weaknesses []string) (PlanResult, error) {
	if len(weaknesses) == 0 {
		p.logger.Printf("no weak topics, skipping search planning")
		return PlanResult{
			Message: llm.Message{Role: "assistant", Content: "No weak areas identified. The student performed well across all attempted topics."},
		}, nil
	}

	prompt := plannerPrompt(weaknesses)
	temp := 0.1
	completion, err := p.provider.Chat(ctx, p.model,
		[]llm.Message{{Role: "user", Content: prompt}},
		[]llm.Tool{searchToolDecl()},
		llm.Options{Temperature: &temp},
	)
	if err != nil {
		return PlanResult{}, fmt.Errorf("planning call: %w", err)
	}
	telemetry.LLMTokens.WithLabelValues(p.model, "prompt").Add(float64(completion.PromptTokens))
	telemetry.LLMTokens.WithLabelValues(p.model, "completion").Add(float64(completion.CompletionTokens))

	calls := ParseSearchCalls(completion.Message.ToolCalls)
	p.logger.Printf("planned %d search calls for %d weak topics", len(calls), len(weaknesses))
	return PlanResult{Message: completion.Message, Calls: calls}, nil
}

// ParseSearchCalls extracts query strings from raw tool calls. The query
// text is trusted verbatim; models may deviate from the requested template
// and that is surfaced to the reader, not masked here.
func ParseSearchCalls(toolCalls []llm.ToolCall) []ToolCallRequest {
	var calls []ToolCallRequest
	for _, tc := range toolCalls {
		if tc.Name != SearchToolName {
			continue
		}
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil || strings.TrimSpace(args.Query) == "" {
			continue
		}
		id := tc.ID
		if id == "" {
			id = uuid.NewString()
		}
		calls = append(calls, ToolCallRequest{ID: id, Name: tc.Name, Query: args.Query})
	}
	return calls
}

func plannerPrompt(weaknesses []string) string {
	var b strings.Builder
	b.WriteString("You are an expert academic advisor. Your job is to find external learning resources for a student's weak topics. You have one tool available: a web search tool named `search`.\n\n")
	b.WriteString("**The student's weak topics:**\n")
	for _, topic := range weaknesses {
		fmt.Fprintf(&b, "- %s\n", topic)
	}
	b.WriteString("\nFor EACH weak topic listed above, you MUST call the `search` tool exactly twice:\n")
	b.WriteString("1.  **To find a video tutorial:** Compulsorily frame your search query like this: `site:youtube.com \"<topic>\" tutorial for placements`\n")
	b.WriteString("2.  **To find practice material:** Frame your search query like this: `free \"<topic>\" practice questions GeeksforGeeks OR IndiaBIX`\n")
	b.WriteString("\nAfter deciding on the tool calls, also write a preliminary analysis of the student's performance.\n")
	return b.String()
}
