package report

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/prepwise/prepwise/internal/llm"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestPlanEmptyWeaknessesSkipsModel(t *testing.T) {
	provider := &scriptedProvider{}
	planner := NewPlanner(provider, "test-model", testLogger())

	plan, err := planner.Plan(context.Background(), nil)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if provider.callCount() != 0 {
		t.Fatalf("Plan called the model %d times for empty weaknesses", provider.callCount())
	}
	if len(plan.Calls) != 0 {
		t.Fatalf("Plan returned %d calls for empty weaknesses", len(plan.Calls))
	}
	if plan.Message.Content == "" {
		t.Fatalf("Plan returned empty narrative for empty weaknesses")
	}
}

func TestPlanTwoCallsPerTopic(t *testing.T) {
	provider := &scriptedProvider{script: []llm.Completion{{
		Message: llm.Message{
			Role:    "assistant",
			Content: "The student struggles with Time & Work.",
			ToolCalls: []llm.ToolCall{
				toolCall("call_1", `site:youtube.com "Time & Work" tutorial for placements`),
				toolCall("call_2", `free "Time & Work" practice questions GeeksforGeeks OR IndiaBIX`),
			},
		},
	}}}
	planner := NewPlanner(provider, "test-model", testLogger())

	plan, err := planner.Plan(context.Background(), []string{"QA -> Time & Work"})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if provider.callCount() != 1 {
		t.Fatalf("Plan called the model %d times, want 1", provider.callCount())
	}
	if len(plan.Calls) != 2 {
		t.Fatalf("Plan parsed %d calls, want 2", len(plan.Calls))
	}
	if plan.Calls[0].ID != "call_1" || plan.Calls[1].ID != "call_2" {
		t.Fatalf("call IDs not preserved: %+v", plan.Calls)
	}
	if plan.Calls[0].Query == "" || plan.Calls[1].Query == "" {
		t.Fatalf("call queries empty: %+v", plan.Calls)
	}
}

func TestParseSearchCallsSkipsMalformed(t *testing.T) {
	calls := ParseSearchCalls([]llm.ToolCall{
		{ID: "a", Name: "other_tool", Arguments: `{"query":"x"}`},
		{ID: "b", Name: SearchToolName, Arguments: `not json`},
		{ID: "c", Name: SearchToolName, Arguments: `{"query":"  "}`},
		{ID: "", Name: SearchToolName, Arguments: `{"query":"valid"}`},
	})
	if len(calls) != 1 {
		t.Fatalf("parsed %d calls, want 1: %+v", len(calls), calls)
	}
	if calls[0].Query != "valid" {
		t.Fatalf("query = %q, want %q", calls[0].Query, "valid")
	}
	if calls[0].ID == "" {
		t.Fatalf("missing call ID was not filled in")
	}
}
