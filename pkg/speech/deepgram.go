package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	deepgramEndpoint = "wss://api.deepgram.com/v1/listen"
	writeWait        = 10 * time.Second
	transcriptBuffer = 64
)

var ErrStreamClosed = errors.New("transcription stream closed")

// Deepgram opens live transcription streams. Only finalized fragments are
// requested.
type Deepgram struct {
	apiKey   string
	endpoint string
	dialer   *websocket.Dialer
	tracer   trace.Tracer
}

func NewDeepgram(apiKey string) *Deepgram {
	return &Deepgram{
		apiKey:   apiKey,
		endpoint: deepgramEndpoint,
		dialer:   websocket.DefaultDialer,
		tracer:   otel.Tracer("newsmentor/speech"),
	}
}

func (d *Deepgram) listenURL() string {
	q := url.Values{}
	q.Set("model", "nova-2")
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")
	q.Set("language", "en")
	q.Set("interim_results", "false")
	q.Set("endpointing", "1000")
	return d.endpoint + "?" + q.Encode()
}

func (d *Deepgram) Open(ctx context.Context) (*Stream, error) {
	ctx, span := d.tracer.Start(ctx, "speech.transcribe.open")
	defer span.End()

	header := http.Header{}
	header.Set("Authorization", "Token "+d.apiKey)

	conn, resp, err := d.dialer.DialContext(ctx, d.listenURL(), header)
	if err != nil {
		span.RecordError(err)
		if resp != nil {
			return nil, fmt.Errorf("deepgram dial: status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("deepgram dial: %w", err)
	}

	s := &Stream{
		conn:        conn,
		transcripts: make(chan string, transcriptBuffer),
		done:        make(chan struct{}),
	}
	go s.readLoop()

	return s, nil
}

// Stream is one live transcription connection. Transcripts is closed when
// the connection ends for any reason.
type Stream struct {
	conn        *websocket.Conn
	writeMu     sync.Mutex
	transcripts chan string
	done        chan struct{}

	errMu sync.Mutex
	err   error

	closeOnce sync.Once
}

func (s *Stream) Transcripts() <-chan string {
	return s.transcripts
}

func (s *Stream) Send(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	select {
	case <-s.done:
		return ErrStreamClosed
	default:
	}
	return s.write(websocket.BinaryMessage, chunk)
}

// Finish asks the server to flush pending audio and waits until it closes
// the connection or ctx expires.
func (s *Stream) Finish(ctx context.Context) error {
	defer s.Close()

	select {
	case <-s.done:
		return s.Err()
	default:
	}

	if err := s.write(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
		return err
	}

	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Stream) write(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		return fmt.Errorf("deepgram write: %w", err)
	}
	return nil
}

func (s *Stream) readLoop() {
	defer close(s.done)
	defer close(s.transcripts)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !expectedClose(err) {
				s.setErr(fmt.Errorf("deepgram read: %w", err))
			}
			return
		}

		text, err := parseResult(data)
		if err != nil {
			slog.Warn("unreadable transcription message", "error", err)
			continue
		}
		if text != "" {
			s.transcripts <- text
		}
	}
}

func expectedClose(err error) bool {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway
	}
	return errors.Is(err, net.ErrClosed)
}

func (s *Stream) setErr(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

type listenMessage struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// parseResult returns the transcript of a final Results message and "" for
// anything else.
func parseResult(data []byte) (string, error) {
	var msg listenMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", err
	}
	if msg.Type != "Results" || !msg.IsFinal || len(msg.Channel.Alternatives) == 0 {
		return "", nil
	}
	return strings.TrimSpace(msg.Channel.Alternatives[0].Transcript), nil
}
