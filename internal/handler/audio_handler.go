package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

const mimeMPEG = "audio/mpeg"

type ClipReader interface {
	Get(ctx context.Context, id string) ([]byte, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type AudioHandler struct {
	clips ClipReader
	synth Synthesizer
}

// NewAudioHandler accepts a nil synthesizer; POST /speech then answers 503.
func NewAudioHandler(clips ClipReader, synth Synthesizer) *AudioHandler {
	return &AudioHandler{clips: clips, synth: synth}
}

func (h *AudioHandler) GetClip(c *gin.Context) {
	clip, err := h.clips.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "error loading audio clip", err, "clip", c.Param("id"))
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, mimeMPEG, clip)
}

func (h *AudioHandler) Speak(c *gin.Context) {
	if h.synth == nil {
		writeError(c, "speech unavailable", errNotConfigured)
		return
	}

	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	clip, err := h.synth.Synthesize(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, "error synthesizing speech", err)
		return
	}

	c.Data(http.StatusOK, mimeMPEG, clip)
}
