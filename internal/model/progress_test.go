package model

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestBuildProgress_Empty(t *testing.T) {
	p := BuildProgress(nil, 3)

	assert.Equal(t, 0, p.TotalQuizzes)
	assert.Equal(t, 0.0, p.AverageScore)
	assert.Equal(t, 3, p.TotalBookmarks)
	assert.Equal(t, 0, len(p.RecentTopics))
	assert.NotEqual(t, nil, p.QuizResults)
}

func TestBuildProgress_AverageAndTopics(t *testing.T) {
	results := []QuizResult{
		{MainTopic: "t1", TotalQuestions: 5, CorrectAnswers: 5},
		{MainTopic: "t2", TotalQuestions: 5, CorrectAnswers: 0},
		{MainTopic: "t3", TotalQuestions: 4, CorrectAnswers: 2},
		{MainTopic: "t4", TotalQuestions: 2, CorrectAnswers: 1},
		{MainTopic: "t5", TotalQuestions: 1, CorrectAnswers: 1},
		{MainTopic: "t6", TotalQuestions: 0, CorrectAnswers: 0},
	}

	p := BuildProgress(results, 0)

	assert.Equal(t, 6, p.TotalQuizzes)
	assert.Equal(t, 0.5, p.AverageScore)
	assert.Equal(t, []string{"t1", "t2", "t3", "t4", "t5"}, p.RecentTopics)
}

func TestCountExchanges(t *testing.T) {
	entries := []ConversationEntry{
		{Kind: EntryQuestion},
		{Kind: EntryResponse},
		{Kind: EntryAcknowledgment},
		{Kind: EntryQuestion},
		{Kind: EntryResponse},
	}

	assert.Equal(t, 2, CountExchanges(entries))
	assert.Equal(t, 0, CountExchanges(nil))
}
