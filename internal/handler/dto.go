package handler

import (
	"time"

	"newsmentor/internal/discussion"
	"newsmentor/internal/model"
	"newsmentor/pkg/news"
)

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type NewsResponse struct {
	Category  string                `json:"category"`
	Articles  []news.Article        `json:"articles"`
	Providers []news.ProviderStatus `json:"providers"`
	FetchedAt string                `json:"fetched_at"`
}

type ExtractRequest struct {
	URL string `json:"url" binding:"required,url"`
}

type ExtractResponse struct {
	Content string `json:"content"`
}

type CreateDiscussionRequest struct {
	ArticleText     string `json:"article_text"`
	HighlightedText string `json:"highlighted_text"`
}

type AnswerRequest struct {
	Transcript string `json:"transcript"`
}

type PlaybackRequest struct {
	Event string `json:"event" binding:"required,oneof=ended paused resumed"`
}

// TurnResponse is returned by every operation that makes the tutor speak.
type TurnResponse struct {
	SessionID      string           `json:"session_id"`
	State          discussion.State `json:"state"`
	Discussion     string           `json:"discussion,omitempty"`
	Transcript     string           `json:"transcript,omitempty"`
	Acknowledgment string           `json:"acknowledgment,omitempty"`
	Question       string           `json:"question"`
	AudioURL       string           `json:"audio_url"`
}

type SnapshotResponse struct {
	discussion.Snapshot
	AudioURL string `json:"audio_url,omitempty"`
}

type DiscussionSummaryResponse struct {
	ID             string                    `json:"id"`
	Topic          string                    `json:"topic"`
	TotalExchanges int                       `json:"total_exchanges"`
	Entries        []model.ConversationEntry `json:"entries"`
	CreatedAt      string                    `json:"created_at"`
}

type TextRequest struct {
	Text string `json:"text" binding:"required"`
}

type ExplainQuizRequest struct {
	MainTopic string                   `json:"main_topic"`
	Incorrect []model.AnsweredQuestion `json:"incorrect_answers" binding:"required,min=1"`
}

type QuizResultRequest struct {
	MainTopic      string                   `json:"main_topic" binding:"required"`
	TotalQuestions int                      `json:"total_questions" binding:"min=0"`
	CorrectAnswers int                      `json:"correct_answers" binding:"min=0,ltefield=TotalQuestions"`
	Questions      []model.AnsweredQuestion `json:"questions"`
}

type BookmarkRequest struct {
	Text        string `json:"text" binding:"required"`
	Explanation string `json:"explanation" binding:"required"`
}

// WebSocket messages sent by /discussions/:id/listen.
type listenMessage struct {
	Type        string        `json:"type"`
	Text        string        `json:"text,omitempty"`
	Turn        *TurnResponse `json:"turn,omitempty"`
	Error       string        `json:"error,omitempty"`
	Recoverable bool          `json:"recoverable,omitempty"`
}

type listenCommand struct {
	Type string `json:"type"`
}

func audioURL(id string) string {
	if id == "" {
		return ""
	}
	return "/audio/" + id
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
