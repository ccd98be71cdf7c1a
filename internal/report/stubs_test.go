package report

import (
	"context"
	"fmt"
	"sync"

	"github.com/prepwise/prepwise/internal/llm"
	"github.com/prepwise/prepwise/tools/websearch/models"
)

// scriptedProvider replays canned completions in order. When the script runs
// out, the last completion repeats, which lets tests model a model that never
// stops asking for tools.
type scriptedProvider struct {
	mu     sync.Mutex
	calls  int
	script []llm.Completion
	err    error
}

func (p *scriptedProvider) Chat(_ context.Context, _ string, _ []llm.Message, _ []llm.Tool, _ llm.Options) (llm.Completion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return llm.Completion{}, p.err
	}
	if len(p.script) == 0 {
		return llm.Completion{}, fmt.Errorf("scripted provider has no completions")
	}
	c := p.script[0]
	if len(p.script) > 1 {
		p.script = p.script[1:]
	}
	return c, nil
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type stubSearcher struct {
	mu      sync.Mutex
	calls   int
	results func(q string) []models.Result
	err     error
}

func (s *stubSearcher) Search(_ context.Context, q string, _ int) ([]models.Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.results == nil {
		return nil, nil
	}
	return s.results(q), nil
}

func (s *stubSearcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func toolCall(id, query string) llm.ToolCall {
	return llm.ToolCall{ID: id, Name: SearchToolName, Arguments: fmt.Sprintf(`{"query":%q}`, query)}
}
