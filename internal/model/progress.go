package model

const recentTopicLimit = 5

type Progress struct {
	QuizResults    []QuizResult `json:"quiz_results"`
	TotalQuizzes   int          `json:"total_quizzes"`
	AverageScore   float64      `json:"average_score"`
	TotalBookmarks int          `json:"total_bookmarks"`
	RecentTopics   []string     `json:"recent_topics"`
}

// BuildProgress expects results ordered newest first.
func BuildProgress(results []QuizResult, bookmarks int) Progress {
	p := Progress{
		QuizResults:    results,
		TotalQuizzes:   len(results),
		TotalBookmarks: bookmarks,
		RecentTopics:   []string{},
	}
	if p.QuizResults == nil {
		p.QuizResults = []QuizResult{}
	}

	var sum float64
	var scored int
	for _, r := range results {
		if r.TotalQuestions > 0 {
			sum += float64(r.CorrectAnswers) / float64(r.TotalQuestions)
		}
		scored++
	}
	if scored > 0 {
		p.AverageScore = sum / float64(scored)
	}

	for i, r := range results {
		if i == recentTopicLimit {
			break
		}
		p.RecentTopics = append(p.RecentTopics, r.MainTopic)
	}

	return p
}
