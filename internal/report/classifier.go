package report

import "sort"

// Classify partitions a topic breakdown into strengths and weaknesses.
// A topic with at least one incorrect answer is a weakness; a topic answered
// only correctly is a strength; a never-attempted topic is dropped. Topics
// are visited in lexicographic order so the output is deterministic.
func Classify(breakdown map[string]TopicScore) Classification {
	topics := make([]string, 0, len(breakdown))
	for topic := range breakdown {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	var cls Classification
	for _, topic := range topics {
		score := breakdown[topic]
		switch {
		case score.Incorrect > 0:
			cls.Weaknesses = append(cls.Weaknesses, topic)
		case score.Correct > 0:
			cls.Strengths = append(cls.Strengths, topic)
		}
	}
	return cls
}
