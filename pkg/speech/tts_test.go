package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/openai/openai-go/option"
)

func TestSynthesize(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3fake-mp3"))
	}))
	defer srv.Close()

	s := NewOpenAISpeech("test-key", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))

	audio, err := s.Synthesize(context.Background(), "  Here's your question: why?  ")

	assert.Equal(t, nil, err)
	assert.Equal(t, []byte("ID3fake-mp3"), audio)
	assert.Equal(t, "tts-1", body["model"])
	assert.Equal(t, "alloy", body["voice"])
	assert.Equal(t, "Here's your question: why?", body["input"])
}

func TestSynthesizeEmptyText(t *testing.T) {
	s := NewOpenAISpeech("test-key")

	_, err := s.Synthesize(context.Background(), "   ")

	assert.Equal(t, true, errors.Is(err, ErrEmptyText))
}

func TestSynthesizeVendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	s := NewOpenAISpeech("test-key", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))

	_, err := s.Synthesize(context.Background(), "hello")

	assert.NotEqual(t, nil, err)
}
