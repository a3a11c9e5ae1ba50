package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestGetHealth(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("dial tcp: refused") }

	tests := []struct {
		name   string
		checks map[string]Check
		status int
		body   map[string]string
	}{
		{
			name:   "healthy",
			checks: map[string]Check{"redis": ok, "database": ok},
			status: http.StatusOK,
			body:   map[string]string{"status": "healthy", "redis": "connected", "database": "connected"},
		},
		{
			name:   "redis down",
			checks: map[string]Check{"redis": down, "database": ok},
			status: http.StatusServiceUnavailable,
			body:   map[string]string{"status": "unhealthy", "redis": "disconnected", "database": "connected"},
		},
		{
			name:   "no dependencies",
			checks: nil,
			status: http.StatusOK,
			body:   map[string]string{"status": "healthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine()
			r.GET("/health", NewHealthHandler(tt.checks).GetHealth)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

			var body map[string]string
			json.Unmarshal(w.Body.Bytes(), &body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, body)
		})
	}
}
