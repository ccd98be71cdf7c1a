package report

import (
	"github.com/prepwise/prepwise/internal/llm"
	"github.com/prepwise/prepwise/tools/websearch/models"
)

// TopicScore is the per-topic correctness tally.
type TopicScore struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Total     int `json:"total"`
}

// PerformanceReport is the raw input to a report run. Fields other than
// TopicBreakdown are pass-through context for the synthesis prompt.
type PerformanceReport struct {
	StudentName     string                `json:"student_name"`
	Score           int                   `json:"score"`
	TotalQuestions  int                   `json:"total_questions"`
	Accuracy        float64               `json:"accuracy"`
	CorrectCount    int                   `json:"correct_count"`
	IncorrectCount  int                   `json:"incorrect_count"`
	UnansweredCount int                   `json:"unanswered_count"`
	TotalTimeTaken  int64                 `json:"total_time_taken"`
	TopicBreakdown  map[string]TopicScore `json:"topic_breakdown"`
}

// Classification partitions topics into strengths and weaknesses.
// The two lists are disjoint; never-attempted topics appear in neither.
type Classification struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// ToolCallRequest is one search invocation requested by the model.
type ToolCallRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Query string `json:"query"`
}

// ToolResult carries the outcome of executing one ToolCallRequest,
// attributed back to the requesting call. A failed or empty search leaves
// Results empty; that is a degraded slot, not an error.
type ToolResult struct {
	CallID  string          `json:"call_id"`
	Query   string          `json:"query"`
	Results []models.Result `json:"results"`
}

// ReportResponse is what callers of GenerateReport receive. Analysis is
// either the markdown report or the formatted error sentence; Degraded is
// set when link verification had to strip fabricated hyperlinks.
type ReportResponse struct {
	Analysis string `json:"analysis"`
	Degraded bool   `json:"degraded,omitempty"`
}

// Conversation is the per-run message sequence. Append copies, so a
// Conversation value handed to a component can never be mutated behind its
// back; each run builds its own and discards it at the end.
type Conversation struct {
	msgs []llm.Message
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Append returns a new Conversation with msg added. The receiver is unchanged.
func (c *Conversation) Append(msg llm.Message) *Conversation {
	out := make([]llm.Message, len(c.msgs), len(c.msgs)+1)
	copy(out, c.msgs)
	return &Conversation{msgs: append(out, msg)}
}

// Messages returns the ordered message sequence.
func (c *Conversation) Messages() []llm.Message {
	return c.msgs
}
