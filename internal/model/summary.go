package model

import "time"

type DiscussionSummary struct {
	ID            string              `json:"id" firestore:"-"`
	SubjectID     string              `json:"user_id" firestore:"userId"`
	Topic         string              `json:"topic" firestore:"topic"`
	Entries       []ConversationEntry `json:"entries" firestore:"entries"`
	ExchangeCount int                 `json:"total_exchanges" firestore:"totalExchanges"`
	CreatedAt     time.Time           `json:"timestamp" firestore:"timestamp"`
}

// CountExchanges returns the number of answered questions in entries.
func CountExchanges(entries []ConversationEntry) int {
	n := 0
	for _, e := range entries {
		if e.Kind == EntryResponse {
			n++
		}
	}
	return n
}
