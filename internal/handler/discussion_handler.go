package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"newsmentor/internal/discussion"
	"newsmentor/internal/middleware"
	"newsmentor/internal/model"
)

const (
	maxAudioBytes     = 25 << 20
	maxFrameBytes     = 1 << 20
	writeWait         = 10 * time.Second
	defaultHistory    = 5
	maxHistory        = 50
	listenStopCommand = "stop"
)

type DiscussionHistory interface {
	RecentDiscussions(ctx context.Context, userID string, limit int) ([]model.DiscussionSummary, error)
}

// CaptureConfig controls how uploaded audio is paced into the transcription
// stream and which origins may open the listen socket.
type CaptureConfig struct {
	ChunkBytes     int
	Cadence        time.Duration
	AllowedOrigins []string
}

type DiscussionHandler struct {
	registry *discussion.Registry
	history  DiscussionHistory
	capture  CaptureConfig
	upgrader websocket.Upgrader
}

// NewDiscussionHandler accepts a nil registry when generation or speech is
// not configured; every discussion route then answers 503.
func NewDiscussionHandler(registry *discussion.Registry, history DiscussionHistory, capture CaptureConfig) *DiscussionHandler {
	h := &DiscussionHandler{
		registry: registry,
		history:  history,
		capture:  capture,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *DiscussionHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(h.capture.AllowedOrigins, origin)
}

// session loads the coordinator named in the path. Sessions of other users
// are reported as missing.
func (h *DiscussionHandler) session(c *gin.Context) (*discussion.Coordinator, bool) {
	if h.registry == nil {
		writeError(c, "discussion unavailable", errNotConfigured)
		return nil, false
	}

	session, err := h.registry.Get(c.Param("id"))
	if err == nil && session.SubjectID() != middleware.SubjectFrom(c) {
		err = discussion.ErrNotFound
	}
	if err != nil {
		writeError(c, "error loading discussion", err, "session", c.Param("id"))
		return nil, false
	}
	return session, true
}

func (h *DiscussionHandler) turnResponse(session *discussion.Coordinator, turn *discussion.Turn) TurnResponse {
	return TurnResponse{
		SessionID:      session.ID(),
		State:          session.State(),
		Discussion:     turn.Discussion,
		Transcript:     turn.Transcript,
		Acknowledgment: turn.Acknowledgment,
		Question:       turn.Question,
		AudioURL:       audioURL(turn.AudioID),
	}
}

func snapshotResponse(session *discussion.Coordinator) SnapshotResponse {
	snap := session.Snapshot()
	return SnapshotResponse{Snapshot: snap, AudioURL: audioURL(snap.AudioID)}
}

func (h *DiscussionHandler) Create(c *gin.Context) {
	if h.registry == nil {
		writeError(c, "discussion unavailable", errNotConfigured)
		return
	}

	var req CreateDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session := h.registry.Create(middleware.SubjectFrom(c))
	turn, err := session.Start(c.Request.Context(), discussion.Source{
		Article:   req.ArticleText,
		Highlight: req.HighlightedText,
	})
	if err != nil {
		if disposeErr := h.registry.Dispose(c.Request.Context(), session.ID()); disposeErr != nil {
			slog.Error("error disposing discussion", "error", disposeErr, "session", session.ID())
		}
		writeError(c, "error starting discussion", err)
		return
	}

	c.JSON(http.StatusCreated, h.turnResponse(session, turn))
}

func (h *DiscussionHandler) Start(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req CreateDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	turn, err := session.Start(c.Request.Context(), discussion.Source{
		Article:   req.ArticleText,
		Highlight: req.HighlightedText,
	})
	if err != nil {
		writeError(c, "error starting discussion", err, "session", session.ID())
		return
	}

	c.JSON(http.StatusOK, h.turnResponse(session, turn))
}

// Answer takes the user's reply either as JSON {transcript} or as a
// recorded audio body that is relayed through live transcription.
func (h *DiscussionHandler) Answer(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var turn *discussion.Turn
	var err error
	if c.ContentType() == gin.MIMEJSON {
		var req AnswerRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			badRequest(c, bindErr)
			return
		}
		turn, err = session.Submit(c.Request.Context(), req.Transcript)
	} else {
		turn, err = h.answerAudio(c, session)
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Audio too large"})
		return
	}
	if err != nil {
		writeError(c, "error answering discussion", err, "session", session.ID())
		return
	}

	c.JSON(http.StatusOK, h.turnResponse(session, turn))
}

func (h *DiscussionHandler) answerAudio(c *gin.Context, session *discussion.Coordinator) (*discussion.Turn, error) {
	ctx := c.Request.Context()
	if err := session.BeginCapture(ctx); err != nil {
		return nil, err
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxAudioBytes)
	if err := discussion.RelayAudio(ctx, session, body, h.capture.ChunkBytes, h.capture.Cadence); err != nil {
		slog.Warn("audio upload interrupted", "session", session.ID(), "error", err)
		session.AbortCapture(ctx)
		return nil, err
	}

	return session.StopCapture(ctx)
}

func (h *DiscussionHandler) Playback(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req PlaybackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := session.Playback(discussion.PlaybackEvent(req.Event)); err != nil {
		writeError(c, "error recording playback", err, "session", session.ID())
		return
	}

	c.JSON(http.StatusOK, snapshotResponse(session))
}

func (h *DiscussionHandler) Reset(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.Reset(c.Request.Context()); err != nil {
		writeError(c, "error resetting discussion", err, "session", session.ID())
		return
	}

	c.JSON(http.StatusOK, snapshotResponse(session))
}

func (h *DiscussionHandler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, snapshotResponse(session))
}

func (h *DiscussionHandler) Delete(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.registry.Dispose(c.Request.Context(), session.ID()); err != nil {
		writeError(c, "error closing discussion", err, "session", session.ID())
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *DiscussionHandler) ListRecent(c *gin.Context) {
	res := []DiscussionSummaryResponse{}
	if h.history == nil {
		c.JSON(http.StatusOK, res)
		return
	}

	limit := getQueryLimit(c, defaultHistory, maxHistory)
	summaries, err := h.history.RecentDiscussions(c.Request.Context(), middleware.SubjectFrom(c), limit)
	if err != nil {
		writeDatabaseError(c, "error fetching discussions", err)
		return
	}

	for _, s := range summaries {
		res = append(res, DiscussionSummaryResponse{
			ID:             s.ID,
			Topic:          s.Topic,
			TotalExchanges: s.ExchangeCount,
			Entries:        s.Entries,
			CreatedAt:      formatTime(s.CreatedAt),
		})
	}

	c.JSON(http.StatusOK, res)
}

// Listen streams the user's answer over a websocket. Binary frames carry
// audio; a {"type":"stop"} text frame ends the capture and the turn is sent
// back before the socket closes.
func (h *DiscussionHandler) Listen(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("failed to upgrade connection", "error", err, "session", session.ID())
		return
	}
	defer conn.Close()

	out := &socketWriter{conn: conn}
	ctx := c.Request.Context()

	err = session.BeginCapture(ctx, discussion.OnTranscript(func(current string) {
		out.send(listenMessage{Type: "transcript", Text: current})
	}))
	if err != nil {
		out.sendError(session.ID(), err)
		return
	}

	conn.SetReadLimit(maxFrameBytes)
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("listen socket closed unexpectedly", "error", err, "session", session.ID())
			}
			session.AbortCapture(ctx)
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			if err := session.Relay(data); err != nil {
				out.sendError(session.ID(), err)
				return
			}
		case websocket.TextMessage:
			var cmd listenCommand
			if err := json.Unmarshal(data, &cmd); err != nil || cmd.Type != listenStopCommand {
				continue
			}

			turn, err := session.StopCapture(ctx)
			if err != nil {
				out.sendError(session.ID(), err)
				return
			}
			res := h.turnResponse(session, turn)
			out.send(listenMessage{Type: "turn", Turn: &res})
			out.close()
			return
		}
	}
}

// socketWriter serializes writes from the read loop and the transcript
// callback.
type socketWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *socketWriter) send(msg listenMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := w.conn.WriteJSON(msg); err != nil {
		slog.Debug("error writing to listen socket", "error", err)
	}
}

func (w *socketWriter) sendError(sessionID string, err error) {
	status, text, recoverable := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("error during live capture", "error", err, "session", sessionID)
	}
	w.send(listenMessage{Type: "error", Error: text, Recoverable: recoverable})
	w.close()
}

func (w *socketWriter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
