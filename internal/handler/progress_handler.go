package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"newsmentor/internal/middleware"
	"newsmentor/internal/model"
)

type BookmarkStore interface {
	Add(ctx context.Context, b *model.Bookmark) error
	List(ctx context.Context, userID string) ([]model.Bookmark, error)
	Find(ctx context.Context, userID, text string) (*model.Bookmark, error)
	Remove(ctx context.Context, userID, id string) error
	Count(ctx context.Context, userID string) (int, error)
}

type QuizStore interface {
	SaveResult(ctx context.Context, result *model.QuizResult) error
	Results(ctx context.Context, userID string) ([]model.QuizResult, error)
}

type ProgressHandler struct {
	bookmarks BookmarkStore
	quizzes   QuizStore
}

// NewProgressHandler accepts nil stores when no database is configured;
// the routes then answer 503.
func NewProgressHandler(bookmarks BookmarkStore, quizzes QuizStore) *ProgressHandler {
	return &ProgressHandler{bookmarks: bookmarks, quizzes: quizzes}
}

func (h *ProgressHandler) available(c *gin.Context) bool {
	if h.bookmarks == nil || h.quizzes == nil {
		writeError(c, "progress store unavailable", errNotConfigured)
		return false
	}
	return true
}

func (h *ProgressHandler) ListBookmarks(c *gin.Context) {
	if !h.available(c) {
		return
	}

	bookmarks, err := h.bookmarks.List(c.Request.Context(), middleware.SubjectFrom(c))
	if err != nil {
		writeDatabaseError(c, "error fetching bookmarks", err)
		return
	}

	c.JSON(http.StatusOK, bookmarks)
}

func (h *ProgressHandler) AddBookmark(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var req BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b := &model.Bookmark{
		UserID:      middleware.SubjectFrom(c),
		Text:        strings.TrimSpace(req.Text),
		Explanation: req.Explanation,
	}
	if err := h.bookmarks.Add(c.Request.Context(), b); err != nil {
		writeDatabaseError(c, "error saving bookmark", err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

func (h *ProgressHandler) LookupBookmark(c *gin.Context) {
	if !h.available(c) {
		return
	}

	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing text"})
		return
	}

	b, err := h.bookmarks.Find(c.Request.Context(), middleware.SubjectFrom(c), text)
	if err != nil {
		writeDatabaseError(c, "error looking up bookmark", err)
		return
	}

	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bookmark not found"})
		return
	}

	c.JSON(http.StatusOK, b)
}

func (h *ProgressHandler) RemoveBookmark(c *gin.Context) {
	if !h.available(c) {
		return
	}

	if err := h.bookmarks.Remove(c.Request.Context(), middleware.SubjectFrom(c), c.Param("id")); err != nil {
		writeDatabaseError(c, "error removing bookmark", err, "bookmark", c.Param("id"))
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProgressHandler) SaveQuizResult(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var req QuizResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result := &model.QuizResult{
		UserID:         middleware.SubjectFrom(c),
		MainTopic:      req.MainTopic,
		TotalQuestions: req.TotalQuestions,
		CorrectAnswers: req.CorrectAnswers,
		Questions:      req.Questions,
	}
	if result.Questions == nil {
		result.Questions = []model.AnsweredQuestion{}
	}
	if err := h.quizzes.SaveResult(c.Request.Context(), result); err != nil {
		writeDatabaseError(c, "error saving quiz result", err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *ProgressHandler) GetProgress(c *gin.Context) {
	if !h.available(c) {
		return
	}

	subject := middleware.SubjectFrom(c)

	results, err := h.quizzes.Results(c.Request.Context(), subject)
	if err != nil {
		writeDatabaseError(c, "error fetching quiz results", err)
		return
	}

	bookmarks, err := h.bookmarks.Count(c.Request.Context(), subject)
	if err != nil {
		writeDatabaseError(c, "error counting bookmarks", err)
		return
	}

	c.JSON(http.StatusOK, model.BuildProgress(results, bookmarks))
}
