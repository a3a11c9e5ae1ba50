package model

import "time"

const (
	QuestionMultipleChoice = "multiple-choice"
	QuestionTrueFalse      = "true-false"
	QuestionFillBlank      = "fill-blank"
)

const (
	FlashcardMainIdea = "main-idea"
	FlashcardKeyPoint = "key-point"
	FlashcardDetail   = "detail"
)

type QuizQuestion struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correctAnswer"`
	Options       []string `json:"options,omitempty"`
}

type Quiz struct {
	MainTopic string         `json:"mainTopic"`
	Questions []QuizQuestion `json:"questions"`
}

type AnsweredQuestion struct {
	Question      string `json:"question" firestore:"question"`
	UserAnswer    string `json:"user_answer" firestore:"userAnswer"`
	CorrectAnswer string `json:"correct_answer" firestore:"correctAnswer"`
	Type          string `json:"type,omitempty" firestore:"type,omitempty"`
	IsCorrect     bool   `json:"is_correct" firestore:"isCorrect"`
}

type QuizResult struct {
	ID             string             `json:"id" firestore:"-"`
	UserID         string             `json:"user_id" firestore:"userId"`
	MainTopic      string             `json:"main_topic" firestore:"mainTopic"`
	TotalQuestions int                `json:"total_questions" firestore:"totalQuestions"`
	CorrectAnswers int                `json:"correct_answers" firestore:"correctAnswers"`
	Questions      []AnsweredQuestion `json:"questions" firestore:"questions"`
	CreatedAt      time.Time          `json:"created_at" firestore:"createdAt"`
}

type Flashcard struct {
	ID       string `json:"id"`
	Front    string `json:"front"`
	Back     string `json:"back"`
	Category string `json:"category"`
}

type Concept struct {
	Text       string `json:"text"`
	Type       string `json:"type"`
	StartIndex int    `json:"startIndex"`
	EndIndex   int    `json:"endIndex"`
}

type Bookmark struct {
	ID          string    `json:"id" firestore:"-"`
	UserID      string    `json:"user_id" firestore:"userId"`
	Text        string    `json:"text" firestore:"text"`
	Explanation string    `json:"explanation" firestore:"explanation"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}
