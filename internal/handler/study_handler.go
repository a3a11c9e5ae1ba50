package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"newsmentor/internal/model"
)

type StudyTools interface {
	Explain(ctx context.Context, text string) (string, error)
	GenerateQuiz(ctx context.Context, text string) (*model.Quiz, error)
	ExplainQuiz(ctx context.Context, mainTopic string, incorrect []model.AnsweredQuestion) (string, error)
	GenerateFlashcards(ctx context.Context, text string) ([]model.Flashcard, error)
	IdentifyConcepts(ctx context.Context, text string) ([]model.Concept, error)
}

type StudyHandler struct {
	tools StudyTools
}

// NewStudyHandler accepts nil tools when no language model is configured.
func NewStudyHandler(tools StudyTools) *StudyHandler {
	return &StudyHandler{tools: tools}
}

func (h *StudyHandler) bindText(c *gin.Context) (string, bool) {
	if h.tools == nil {
		writeError(c, "study tools unavailable", errNotConfigured)
		return "", false
	}

	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return "", false
	}
	return req.Text, true
}

func (h *StudyHandler) Explain(c *gin.Context) {
	text, ok := h.bindText(c)
	if !ok {
		return
	}

	explanation, err := h.tools.Explain(c.Request.Context(), text)
	if err != nil {
		writeError(c, "error explaining text", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"explanation": explanation})
}

func (h *StudyHandler) Quiz(c *gin.Context) {
	text, ok := h.bindText(c)
	if !ok {
		return
	}

	quiz, err := h.tools.GenerateQuiz(c.Request.Context(), text)
	if err != nil {
		writeError(c, "error generating quiz", err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *StudyHandler) ExplainQuiz(c *gin.Context) {
	if h.tools == nil {
		writeError(c, "study tools unavailable", errNotConfigured)
		return
	}

	var req ExplainQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	explanation, err := h.tools.ExplainQuiz(c.Request.Context(), req.MainTopic, req.Incorrect)
	if err != nil {
		writeError(c, "error explaining quiz", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"explanation": explanation})
}

func (h *StudyHandler) Flashcards(c *gin.Context) {
	text, ok := h.bindText(c)
	if !ok {
		return
	}

	cards, err := h.tools.GenerateFlashcards(c.Request.Context(), text)
	if err != nil {
		writeError(c, "error generating flashcards", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"flashcards": cards})
}

func (h *StudyHandler) Concepts(c *gin.Context) {
	text, ok := h.bindText(c)
	if !ok {
		return
	}

	concepts, err := h.tools.IdentifyConcepts(c.Request.Context(), text)
	if err != nil {
		writeError(c, "error identifying concepts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"concepts": concepts})
}
