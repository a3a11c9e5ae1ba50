package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"newsmentor/internal/audio"
	"newsmentor/internal/discussion"
	"newsmentor/internal/repository"
	"newsmentor/pkg/llm"
	"newsmentor/pkg/news"
)

var errNotConfigured = errors.New("feature not configured")

// errorStatus maps domain errors to a status code, a client message and
// whether the client can simply try again.
func errorStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, errNotConfigured), errors.Is(err, discussion.ErrNotConfigured):
		return http.StatusServiceUnavailable, "Service not configured", false
	case errors.Is(err, discussion.ErrNoSpeech):
		return http.StatusUnprocessableEntity, "No speech detected", true
	case errors.Is(err, discussion.ErrNoText):
		return http.StatusBadRequest, "No text to discuss", true
	case errors.Is(err, discussion.ErrPlayback):
		return http.StatusBadRequest, "Unknown playback event", false
	case errors.Is(err, discussion.ErrBusy):
		return http.StatusConflict, "Discussion is busy", true
	case errors.Is(err, discussion.ErrInvalidState):
		return http.StatusConflict, "Operation not allowed in the current state", false
	case errors.Is(err, discussion.ErrNotFound), errors.Is(err, audio.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "Not found", false
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict, "Already exists", false
	case errors.Is(err, news.ErrNoContent):
		return http.StatusUnprocessableEntity, "No readable content", false
	case errors.Is(err, llm.ErrMalformedResponse):
		return http.StatusBadGateway, "Invalid response from language model", true
	default:
		return http.StatusBadGateway, "Upstream service error", true
	}
}

func writeError(c *gin.Context, msg string, err error, attrs ...any) {
	status, text, recoverable := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, append([]any{"error", err}, attrs...)...)
	} else {
		slog.Warn(msg, append([]any{"error", err}, attrs...)...)
	}

	body := gin.H{"error": text}
	if recoverable {
		body["recoverable"] = true
	}
	c.JSON(status, body)
}

func writeDatabaseError(c *gin.Context, msg string, err error, attrs ...any) {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrDuplicate) {
		writeError(c, msg, err, attrs...)
		return
	}
	slog.Error(msg, append([]any{"error", err}, attrs...)...)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
}

func badRequest(c *gin.Context, err error) {
	slog.Warn("invalid request", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}
