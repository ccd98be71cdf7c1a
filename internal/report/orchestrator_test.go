package report

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prepwise/prepwise/internal/llm"
	"github.com/prepwise/prepwise/tools/websearch/models"
)

func newTestOrchestrator(provider llm.Provider, searcher *stubSearcher) *Orchestrator {
	logger := testLogger()
	return NewOrchestrator(
		NewPlanner(provider, "test-model", logger),
		NewDispatcher(searcher, 2, time.Second, logger),
		NewSynthesizer(provider, "test-model", logger),
		logger,
	)
}

func TestGenerateReportEndToEnd(t *testing.T) {
	videoURL := "https://youtube.com/watch?v=tw123"
	practiceURL := "https://www.geeksforgeeks.org/time-and-work"
	searcher := &stubSearcher{results: func(q string) []models.Result {
		if strings.Contains(q, "youtube") {
			return []models.Result{{Title: "Time & Work Crash Course", URL: videoURL}}
		}
		return []models.Result{{Title: "Time & Work Practice Questions", URL: practiceURL}}
	}}

	finalReport := fmt.Sprintf(`## Overall Summary
Good effort overall.

## Detailed Analysis
### Your Strengths
*   VA -> Synonyms

### Areas for Improvement
*   QA -> Time & Work

## Personalized Recommendations
Focus on Time & Work fundamentals.

## Recommended Resources
### Topic: QA -> Time & Work
*   **Video Tutorial:** [Time & Work Crash Course](%s)
*   **Practice Material:** [Time & Work Practice Questions](%s)
`, videoURL, practiceURL)

	provider := &scriptedProvider{script: []llm.Completion{
		{Message: llm.Message{
			Role:    "assistant",
			Content: "The student is weak in Time & Work.",
			ToolCalls: []llm.ToolCall{
				toolCall("call_v", `site:youtube.com "Time & Work" tutorial for placements`),
				toolCall("call_p", `free "Time & Work" practice questions GeeksforGeeks OR IndiaBIX`),
			},
		}},
		{Message: llm.Message{Role: "assistant", Content: finalReport}},
	}}

	orch := newTestOrchestrator(provider, searcher)
	resp := orch.GenerateReport(context.Background(), PerformanceReport{
		TopicBreakdown: map[string]TopicScore{
			"QA -> Time & Work": {Correct: 1, Incorrect: 2, Total: 3},
			"VA -> Synonyms":    {Correct: 3, Incorrect: 0, Total: 3},
		},
	})

	if strings.HasPrefix(resp.Analysis, "An error occurred") {
		t.Fatalf("pipeline failed: %s", resp.Analysis)
	}
	if resp.Degraded {
		t.Fatalf("grounded report flagged as degraded")
	}
	for _, want := range []string{
		"## Overall Summary",
		"### Your Strengths",
		"### Areas for Improvement",
		"## Personalized Recommendations",
		"### Topic: QA -> Time & Work",
		"[Time & Work Crash Course](" + videoURL + ")",
		"[Time & Work Practice Questions](" + practiceURL + ")",
	} {
		if !strings.Contains(resp.Analysis, want) {
			t.Fatalf("report missing %q:\n%s", want, resp.Analysis)
		}
	}
	if searcher.callCount() != 2 {
		t.Fatalf("search invoked %d times, want 2", searcher.callCount())
	}
	if provider.callCount() != 2 {
		t.Fatalf("model invoked %d times, want 2 (plan + synthesize)", provider.callCount())
	}
}

func TestGenerateReportEmptyWeaknessesShortCircuits(t *testing.T) {
	searcher := &stubSearcher{}
	provider := &scriptedProvider{script: []llm.Completion{
		{Message: llm.Message{Role: "assistant", Content: "## Overall Summary\nAll topics strong."}},
	}}

	orch := newTestOrchestrator(provider, searcher)
	resp := orch.GenerateReport(context.Background(), PerformanceReport{
		TopicBreakdown: map[string]TopicScore{
			"VA -> Synonyms": {Correct: 3, Incorrect: 0, Total: 3},
		},
	})

	if strings.HasPrefix(resp.Analysis, "An error occurred") {
		t.Fatalf("pipeline failed: %s", resp.Analysis)
	}
	if searcher.callCount() != 0 {
		t.Fatalf("search invoked %d times for zero weaknesses, want 0", searcher.callCount())
	}
	if provider.callCount() != 1 {
		t.Fatalf("model invoked %d times, want 1 (synthesis only)", provider.callCount())
	}
}

func TestGenerateReportOneFollowUpRoundCompletes(t *testing.T) {
	firstURL := "https://example.com/first"
	secondURL := "https://example.com/second"
	searcher := &stubSearcher{results: func(q string) []models.Result {
		if q == "follow-up query" {
			return []models.Result{{Title: "Second Hit", URL: secondURL}}
		}
		return []models.Result{{Title: "First Hit", URL: firstURL}}
	}}

	// The model asks for one more search round before writing the report:
	// plan, dispatch, synthesize, dispatch, synthesize uses the whole budget.
	provider := &scriptedProvider{script: []llm.Completion{
		{Message: llm.Message{
			Role:      "assistant",
			Content:   "planning",
			ToolCalls: []llm.ToolCall{toolCall("c1", "initial query")},
		}},
		{Message: llm.Message{
			Role:      "assistant",
			ToolCalls: []llm.ToolCall{toolCall("c2", "follow-up query")},
		}},
		{Message: llm.Message{
			Role: "assistant",
			Content: "## Recommended Resources\n" +
				"*   **Video Tutorial:** [First Hit](" + firstURL + ")\n" +
				"*   **Practice Material:** [Second Hit](" + secondURL + ")\n",
		}},
	}}

	orch := newTestOrchestrator(provider, searcher)
	resp := orch.GenerateReport(context.Background(), PerformanceReport{
		TopicBreakdown: map[string]TopicScore{"QA -> Ratios": {Correct: 0, Incorrect: 2, Total: 2}},
	})

	if strings.HasPrefix(resp.Analysis, "An error occurred") {
		t.Fatalf("one follow-up round exhausted the step budget: %s", resp.Analysis)
	}
	if resp.Degraded {
		t.Fatalf("grounded report flagged as degraded")
	}
	if !strings.Contains(resp.Analysis, "[Second Hit]("+secondURL+")") {
		t.Fatalf("follow-up result lost:\n%s", resp.Analysis)
	}
	if searcher.callCount() != 2 {
		t.Fatalf("search invoked %d times, want 2", searcher.callCount())
	}
	if provider.callCount() != 3 {
		t.Fatalf("model invoked %d times, want 3 (plan + 2 synthesize)", provider.callCount())
	}
}

func TestGenerateReportStepBudget(t *testing.T) {
	// A model that never produces a report and always asks for more searches.
	searcher := &stubSearcher{results: func(q string) []models.Result {
		return []models.Result{{Title: "hit", URL: "https://example.com/hit"}}
	}}
	provider := &scriptedProvider{script: []llm.Completion{
		{Message: llm.Message{
			Role:      "assistant",
			ToolCalls: []llm.ToolCall{toolCall("again", "one more query")},
		}},
	}}

	orch := newTestOrchestrator(provider, searcher)
	done := make(chan ReportResponse, 1)
	go func() {
		done <- orch.GenerateReport(context.Background(), PerformanceReport{
			TopicBreakdown: map[string]TopicScore{"QA -> Ratios": {Correct: 0, Incorrect: 2, Total: 2}},
		})
	}()

	select {
	case resp := <-done:
		if !strings.HasPrefix(resp.Analysis, "An error occurred while generating the report:") {
			t.Fatalf("expected the error sentence, got: %s", resp.Analysis)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("orchestrator did not terminate under a pathological model")
	}
}

func TestGenerateReportModelFailure(t *testing.T) {
	provider := &scriptedProvider{err: fmt.Errorf("upstream unavailable")}
	orch := newTestOrchestrator(provider, &stubSearcher{})

	resp := orch.GenerateReport(context.Background(), PerformanceReport{
		TopicBreakdown: map[string]TopicScore{"QA -> Ratios": {Correct: 0, Incorrect: 1, Total: 1}},
	})
	if !strings.HasPrefix(resp.Analysis, "An error occurred while generating the report:") {
		t.Fatalf("expected the error sentence, got: %s", resp.Analysis)
	}
	if !strings.Contains(resp.Analysis, "upstream unavailable") {
		t.Fatalf("error description lost: %s", resp.Analysis)
	}
}

func TestGenerateReportStripsFabricatedLinks(t *testing.T) {
	realURL := "https://example.com/real"
	searcher := &stubSearcher{results: func(q string) []models.Result {
		return []models.Result{{Title: "Real Resource", URL: realURL}}
	}}
	provider := &scriptedProvider{script: []llm.Completion{
		{Message: llm.Message{
			Role:      "assistant",
			Content:   "planning",
			ToolCalls: []llm.ToolCall{toolCall("c1", "some query")},
		}},
		{Message: llm.Message{
			Role:    "assistant",
			Content: "## Recommended Resources\n*   **Video Tutorial:** [Real Resource](" + realURL + ")\n*   **Practice Material:** [Made Up](https://fabricated.example.com/x)\n",
		}},
	}}

	orch := newTestOrchestrator(provider, searcher)
	resp := orch.GenerateReport(context.Background(), PerformanceReport{
		TopicBreakdown: map[string]TopicScore{"QA -> Ratios": {Correct: 0, Incorrect: 1, Total: 1}},
	})

	if !resp.Degraded {
		t.Fatalf("fabricated link did not mark the report degraded")
	}
	if strings.Contains(resp.Analysis, "fabricated.example.com") {
		t.Fatalf("fabricated URL survived verification:\n%s", resp.Analysis)
	}
	if !strings.Contains(resp.Analysis, "[Real Resource]("+realURL+")") {
		t.Fatalf("grounded link damaged:\n%s", resp.Analysis)
	}
}
