package quiz

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/prepwise/prepwise/internal/llm"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	content string
	err     error
}

func (p *fakeProvider) Chat(_ context.Context, _ string, _ []llm.Message, _ []llm.Tool, _ llm.Options) (llm.Completion, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return llm.Completion{}, p.err
	}
	return llm.Completion{Message: llm.Message{Role: "assistant", Content: p.content}}, nil
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestGenerateParsesModelOutput(t *testing.T) {
	provider := &fakeProvider{content: `{"questions":[
		{"chapter":"Percentages","question":"What is 20% of 50?","options":{"A":"5","B":"10","C":"15","D":"20"},"correct_answer":"B","solution":"50 * 0.20 = 10."},
		{"chapter":"Ratios","question":"Split 60 in ratio 1:2","options":{"A":"20 and 40","B":"30 and 30","C":"10 and 50","D":"15 and 45"},"correct_answer":"A","solution":"60/3=20, so 20 and 40."}
	]}`}
	g := NewGenerator(provider, "test-model", quietLogger())

	questions := g.Generate(context.Background(), "Quantitative Aptitude", "Medium", 2)
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	if questions[0].Chapter != "Percentages" || questions[0].CorrectAnswer != "B" {
		t.Fatalf("first question parsed wrong: %+v", questions[0])
	}
}

func TestGenerateFallsBackOnError(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("model down")}
	g := NewGenerator(provider, "test-model", quietLogger())

	questions := g.Generate(context.Background(), "Verbal Ability", "Easy", 3)
	if len(questions) != 3 {
		t.Fatalf("fallback produced %d questions, want 3", len(questions))
	}
	for i, q := range questions {
		if q.Question == "" || q.CorrectAnswer == "" {
			t.Fatalf("fallback question %d incomplete: %+v", i, q)
		}
	}
}

func TestGenerateTopsUpShortOutput(t *testing.T) {
	provider := &fakeProvider{content: `{"questions":[
		{"chapter":"Syllogisms","question":"Q1","options":{"A":"1","B":"2","C":"3","D":"4"},"correct_answer":"A","solution":"s"}
	]}`}
	g := NewGenerator(provider, "test-model", quietLogger())

	questions := g.Generate(context.Background(), "Logical Reasoning", "Hard", 3)
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3 after top-up", len(questions))
	}
	if questions[0].Question != "Q1" {
		t.Fatalf("model questions should come first: %+v", questions[0])
	}
}

func TestGenerateSetSplitsAcrossSubjects(t *testing.T) {
	// Erroring provider keeps counts deterministic via the default bank.
	provider := &fakeProvider{err: fmt.Errorf("model down")}
	g := NewGenerator(provider, "test-model", quietLogger())

	questions := g.GenerateSet(context.Background(), []string{"Logical Reasoning", "Verbal Ability"}, "Medium", 5)
	if len(questions) != 5 {
		t.Fatalf("got %d questions, want 5", len(questions))
	}
	counts := map[string]int{}
	for _, q := range questions {
		counts[q.Subject]++
		if q.Chapter == "" {
			t.Fatalf("question missing chapter: %+v", q)
		}
	}
	// remainder goes to the first subject
	if counts["Logical Reasoning"] != 3 || counts["Verbal Ability"] != 2 {
		t.Fatalf("split = %v, want LR:3 VA:2", counts)
	}
}
