package model

import "time"

type EntryKind string

const (
	EntryQuestion       EntryKind = "question"
	EntryResponse       EntryKind = "response"
	EntryAcknowledgment EntryKind = "acknowledgment"
)

type ConversationEntry struct {
	Kind       EntryKind `json:"type" firestore:"type"`
	Text       string    `json:"text" firestore:"text"`
	OccurredAt time.Time `json:"timestamp" firestore:"timestamp"`
}
