package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrEmptyText is returned when there is nothing to synthesize.
var ErrEmptyText = errors.New("text is required")

// Observer receives one call per vendor request.
type Observer interface {
	ObserveCall(operation, outcome string, elapsed time.Duration)
}

// OpenAISpeech turns text into MP3 audio with the OpenAI speech endpoint.
type OpenAISpeech struct {
	client   *openai.Client
	model    openai.SpeechModel
	voice    openai.AudioSpeechNewParamsVoice
	tracer   trace.Tracer
	observer Observer
}

func NewOpenAISpeech(apiKey string, opts ...option.RequestOption) *OpenAISpeech {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAISpeech{
		client: &client,
		model:  openai.SpeechModelTTS1,
		voice:  openai.AudioSpeechNewParamsVoiceAlloy,
		tracer: otel.Tracer("newsmentor/speech"),
	}
}

func (s *OpenAISpeech) SetObserver(o Observer) {
	s.observer = o
}

func (s *OpenAISpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	ctx, span := s.tracer.Start(ctx, "speech.synthesize", trace.WithAttributes(
		attribute.Int("speech.chars", len(text)),
	))
	defer span.End()

	start := time.Now()
	audio, err := s.synthesize(ctx, text)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.observer != nil {
		s.observer.ObserveCall("speech.synthesize", outcome, time.Since(start))
	}

	return audio, err
}

func (s *OpenAISpeech) synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech error: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("openai speech returned no audio")
	}

	return audio, nil
}
