package quiz

// Built-in fallback questions per subject, served when generation fails.
var defaultBank = map[string][]Question{
	"Logical Reasoning": {{
		Chapter:       "Syllogisms",
		Question:      "If all Bloops are Razzies and all Razzies are Lazzies, then all Bloops are definitely Lazzies?",
		Options:       map[string]string{"A": "True", "B": "False", "C": "Uncertain", "D": "None of the above"},
		CorrectAnswer: "A",
		Solution:      "This is a case of transitive relation. If A implies B and B implies C, then A implies C. So, the statement is True.",
	}},
	"Quantitative Aptitude": {{
		Chapter:       "Speed, Time & Distance",
		Question:      "If a train travels 300 km in 5 hours, what is its average speed?",
		Options:       map[string]string{"A": "50 km/h", "B": "60 km/h", "C": "70 km/h", "D": "80 km/h"},
		CorrectAnswer: "B",
		Solution:      "Average Speed = Total Distance / Total Time. Speed = 300 km / 5 hours = 60 km/h.",
	}},
	"Verbal Ability": {{
		Chapter:       "Synonyms",
		Question:      "Choose the correct synonym for 'Benevolent'",
		Options:       map[string]string{"A": "Cruel", "B": "Kind", "C": "Selfish", "D": "Greedy"},
		CorrectAnswer: "B",
		Solution:      "'Benevolent' means well-meaning and kindly. 'Kind' is the closest synonym.",
	}},
}

// defaultQuestions returns n fallback questions for a subject, cycling the
// bank when asked for more than it holds so the quiz always fills up.
func defaultQuestions(subject string, n int) []Question {
	bank := defaultBank[subject]
	if len(bank) == 0 || n <= 0 {
		return nil
	}
	out := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, bank[i%len(bank)])
	}
	return out
}
