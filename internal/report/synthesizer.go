package report

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/prepwise/prepwise/internal/llm"
	"github.com/prepwise/prepwise/internal/telemetry"
)

// Synthesizer turns the accumulated conversation into the final markdown
// report through one more LLM call. The no-fabrication contract is stated in
// the prompt; mechanical enforcement happens afterwards in VerifyLinks.
type Synthesizer struct {
	provider llm.Provider
	model    string
	logger   *log.Logger
}

func NewSynthesizer(provider llm.Provider, model string, logger *log.Logger) *Synthesizer {
	if logger == nil {
		logger = log.New(log.Writer(), "[SYNTH] ", log.LstdFlags)
	}
	return &Synthesizer{provider: provider, model: model, logger: logger}
}

// Synthesize issues the synthesis call over the full conversation plus the
// strengths/weaknesses lists and returns the raw completion. The completion
// may itself carry further tool-call requests; the orchestrator decides what
// to do with those.
func (s *Synthesizer) Synthesize(ctx context.Context, cls Classification, conv *Conversation) (llm.Completion, error) {
	messages := append([]llm.Message{}, conv.Messages()...)
	messages = append(messages, llm.Message{Role: "user", Content: synthesisPrompt(cls)})

	temp := 0.1
	completion, err := s.provider.Chat(ctx, s.model, messages, nil, llm.Options{Temperature: &temp})
	if err != nil {
		return llm.Completion{}, fmt.Errorf("synthesis call: %w", err)
	}
	telemetry.LLMTokens.WithLabelValues(s.model, "prompt").Add(float64(completion.PromptTokens))
	telemetry.LLMTokens.WithLabelValues(s.model, "completion").Add(float64(completion.CompletionTokens))

	s.logger.Printf("synthesized %d chars", len(completion.Message.Content))
	return completion, nil
}

func synthesisPrompt(cls Classification) string {
	var b strings.Builder
	b.WriteString("You are a helpful career coach creating a final, polished performance report. Your task is to synthesize the information from the conversation history into a Markdown report.\n\n")
	b.WriteString("**CRITICAL INSTRUCTION:** The conversation history contains tool results from a web search. Each result is a record like `{\"url\": \"THE_REAL_URL\", \"content\": \"THE_REAL_LINK_TEXT\"}`. You MUST use this exact data. **DO NOT invent, guess, or create your own URLs or link text.** You must extract the `url` and `content` directly from the tool results. If no tool result exists for a topic's resource, omit that resource entirely instead of inventing one.\n\n")

	b.WriteString("**Strong topics:**\n")
	if len(cls.Strengths) == 0 {
		b.WriteString("- (none)\n")
	}
	for _, topic := range cls.Strengths {
		fmt.Fprintf(&b, "- %s\n", topic)
	}
	b.WriteString("\n**Weak topics:**\n")
	if len(cls.Weaknesses) == 0 {
		b.WriteString("- (none)\n")
	}
	for _, topic := range cls.Weaknesses {
		fmt.Fprintf(&b, "- %s\n", topic)
	}

	b.WriteString("\n**Your Task:**\n")
	b.WriteString("Combine all information into a single, comprehensive, and professionally formatted report in Markdown. Follow this structure EXACTLY:\n\n")
	b.WriteString("## Overall Summary\n")
	b.WriteString("Write a brief, encouraging paragraph about the student's performance and potential.\n\n")
	b.WriteString("## Detailed Analysis\n")
	b.WriteString("### Your Strengths\n")
	b.WriteString("*   List all the topics where the student performed well as bullet points.\n\n")
	b.WriteString("### Areas for Improvement\n")
	b.WriteString("*   List all the weak topics as bullet points.\n\n")
	b.WriteString("## Personalized Recommendations\n")
	b.WriteString("Write a short paragraph with actionable advice based on the analysis.\n\n")
	b.WriteString("## Recommended Resources\n")
	b.WriteString("For each weak topic, create a sub-heading. Then, find the corresponding tool result in the history and construct the Markdown links using the real data you found, in the `[Text](URL)` syntax precisely.\n\n")
	b.WriteString("### Topic: [Name of Weak Topic 1]\n")
	b.WriteString("*   **Video Tutorial:** [Use the 'content' from the tool result](Use the 'url' from the tool result)\n")
	b.WriteString("*   **Practice Material:** [Use the 'content' from the tool result](Use the 'url' from the tool result)\n\n")
	b.WriteString("Generate only the final report text in Markdown. Do not add any extra text or commentary.\n")
	return b.String()
}
