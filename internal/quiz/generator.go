package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/prepwise/prepwise/internal/llm"
	"github.com/prepwise/prepwise/internal/telemetry"
)

// Generator produces quiz questions through one JSON-mode LLM call per
// subject, topping up from the built-in defaults when the model fails or
// comes up short. It never returns an error: a quiz always starts.
type Generator struct {
	provider llm.Provider
	model    string
	logger   *log.Logger
}

func NewGenerator(provider llm.Provider, model string, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.New(log.Writer(), "[QUIZGEN] ", log.LstdFlags)
	}
	return &Generator{provider: provider, model: model, logger: logger}
}

var subjectInstructions = map[string]string{
	"Logical Reasoning":     "Chapters may include: Syllogisms, Blood Relations, Coding-Decoding, Seating Arrangement, Direction Sense.",
	"Quantitative Aptitude": "Chapters may include: Time & Work, Percentages, Profit & Loss, Speed Time & Distance, Ratios.",
	"Verbal Ability":        "Chapters may include: Synonyms & Antonyms, Reading Comprehension, Sentence Correction, Para Jumbles, Idioms & Phrases.",
}

// GenerateSet builds a full question set: n questions split evenly across
// the selected subjects with the remainder going to the first subjects,
// then shuffled.
func (g *Generator) GenerateSet(ctx context.Context, subjects []string, difficulty string, n int) []Question {
	if len(subjects) == 0 || n <= 0 {
		return nil
	}
	perSubject := n / len(subjects)
	remainder := n % len(subjects)

	var questions []Question
	for i, subject := range subjects {
		count := perSubject
		if i < remainder {
			count++
		}
		if count == 0 {
			continue
		}
		for _, q := range g.Generate(ctx, subject, difficulty, count) {
			q.Subject = subject
			if q.Chapter == "" {
				q.Chapter = "General"
			}
			questions = append(questions, q)
		}
	}

	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	return questions
}

// Generate asks the model for exactly n MCQs on one subject. LLM failure or
// a short answer falls back to the default question bank.
func (g *Generator) Generate(ctx context.Context, subject, difficulty string, n int) []Question {
	prompt := generationPrompt(subject, difficulty, n)
	temp := 0.7
	completion, err := g.provider.Chat(ctx, g.model,
		[]llm.Message{{Role: "user", Content: prompt}},
		nil,
		llm.Options{Temperature: &temp, JSONMode: true},
	)
	if err != nil {
		g.logger.Printf("generation failed for %s, using defaults: %v", subject, err)
		return defaultQuestions(subject, n)
	}
	telemetry.LLMTokens.WithLabelValues(g.model, "prompt").Add(float64(completion.PromptTokens))
	telemetry.LLMTokens.WithLabelValues(g.model, "completion").Add(float64(completion.CompletionTokens))

	var parsed struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(llm.ExtractFirstJSON(completion.Message.Content)), &parsed); err != nil {
		g.logger.Printf("generation output unparseable for %s, using defaults: %v", subject, err)
		return defaultQuestions(subject, n)
	}

	questions := parsed.Questions
	if len(questions) < n {
		g.logger.Printf("model produced %d/%d questions for %s, topping up from defaults", len(questions), n, subject)
		questions = append(questions, defaultQuestions(subject, n-len(questions))...)
	}
	return questions[:n]
}

func generationPrompt(subject, difficulty string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d multiple choice questions (MCQ) about %s with %s difficulty,\n", n, subject, strings.ToLower(difficulty))
	b.WriteString("focused on engineering placement scenarios in Indian B.Tech colleges like those asked by companies like Infosys, Wipro, TCS.\n")
	b.WriteString(subjectInstructions[subject])
	b.WriteString("\n\nFor each question, provide:\n")
	b.WriteString("1. The question text.\n")
	b.WriteString("2. A specific chapter or topic name for the question (e.g., \"Time & Work\", \"Syllogisms\").\n")
	b.WriteString("3. Four options labeled A), B), C), D).\n")
	b.WriteString("4. The correct answer letter.\n")
	b.WriteString("5. A detailed step-by-step solution.\n\n")
	b.WriteString("Format EACH question as a JSON object like this:\n")
	b.WriteString(`{
    "chapter": "Chapter Name Here",
    "question": "Question text here",
    "options": { "A": "option 1", "B": "option 2", "C": "option 3", "D": "option 4" },
    "correct_answer": "Correct letter here",
    "solution": "Detailed step-by-step solution here"
}`)
	b.WriteString("\n\nReturn ONLY a JSON array of these questions with the key \"questions\". Do not include any other text or explanations.\n")
	return b.String()
}
