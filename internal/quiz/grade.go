package quiz

import (
	"math"
	"time"

	"github.com/prepwise/prepwise/internal/report"
)

// Grade folds a session's answers into the performance report consumed by
// the report pipeline. Topics are keyed "<SubjectAbbrev> -> <Chapter>".
// Unanswered questions count toward the topic total but neither correct nor
// incorrect.
func Grade(sess *Session, now time.Time) report.PerformanceReport {
	breakdown := make(map[string]report.TopicScore)
	correctCount := 0
	incorrectCount := 0

	for i, q := range sess.Questions {
		abbrev, ok := SubjectAbbrev[q.Subject]
		if !ok {
			abbrev = "Unknown"
		}
		chapter := q.Chapter
		if chapter == "" {
			chapter = "General"
		}
		topic := abbrev + " -> " + chapter

		score := breakdown[topic]
		score.Total++
		if answer, answered := sess.Answers[i]; answered {
			if answer.Correct {
				correctCount++
				score.Correct++
			} else {
				incorrectCount++
				score.Incorrect++
			}
		}
		breakdown[topic] = score
	}

	total := len(sess.Questions)
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correctCount) / float64(total) * 100
	}

	return report.PerformanceReport{
		StudentName:     "User",
		Score:           correctCount,
		TotalQuestions:  total,
		Accuracy:        math.Round(accuracy*100) / 100,
		CorrectCount:    correctCount,
		IncorrectCount:  incorrectCount,
		UnansweredCount: total - (correctCount + incorrectCount),
		TotalTimeTaken:  int64(math.Round(now.Sub(sess.StartedAt).Seconds())),
		TopicBreakdown:  breakdown,
	}
}
