package quiz

import (
	"time"
)

// Subjects supported by the quiz surface.
var Subjects = []string{"Logical Reasoning", "Quantitative Aptitude", "Verbal Ability"}

// SubjectAbbrev maps a subject to the short code used in topic labels.
var SubjectAbbrev = map[string]string{
	"Logical Reasoning":     "LR",
	"Quantitative Aptitude": "QA",
	"Verbal Ability":        "VA",
}

// Question is one multiple-choice question. Options are keyed A-D.
type Question struct {
	Subject       string            `json:"subject"`
	Chapter       string            `json:"chapter"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Solution      string            `json:"solution"`
}

// Answer records one submitted answer.
type Answer struct {
	Selected string `json:"selected"`
	Correct  bool   `json:"correct"`
}

// Session is the state of one quiz attempt. Answers are keyed by question
// index; questions never answered simply have no entry.
type Session struct {
	ID        string         `json:"id"`
	Questions []Question     `json:"questions"`
	Answers   map[int]Answer `json:"answers"`
	StartedAt time.Time      `json:"started_at"`
	Timed     bool           `json:"timed"`
}

// TimeLeft returns remaining seconds for a timed session, computed
// server-side from the stored start time. Untimed sessions return -1.
func (s *Session) TimeLeft(secondsPerQuestion int, now time.Time) float64 {
	if !s.Timed {
		return -1
	}
	total := float64(len(s.Questions) * secondsPerQuestion)
	elapsed := now.Sub(s.StartedAt).Seconds()
	if left := total - elapsed; left > 0 {
		return left
	}
	return 0
}

// CheckAnswer compares a submitted option against the stored correct answer
// and records the outcome. Index must be within range.
func (s *Session) CheckAnswer(index int, selected string) (correct bool, correctAnswer, solution string, ok bool) {
	if index < 0 || index >= len(s.Questions) {
		return false, "", "", false
	}
	q := s.Questions[index]
	correct = selected == q.CorrectAnswer
	if s.Answers == nil {
		s.Answers = make(map[int]Answer)
	}
	s.Answers[index] = Answer{Selected: selected, Correct: correct}
	solution = q.Solution
	if solution == "" {
		solution = "Solution not available."
	}
	return correct, q.CorrectAnswer, solution, true
}
