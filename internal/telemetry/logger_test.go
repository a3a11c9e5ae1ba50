package telemetry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestInitLoggerWritesFile(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "logs", "api.log")
	closer, err := InitLogger("warn", path)
	assert.Equal(t, nil, err)

	slog.Info("dropped")
	slog.Warn("kept", "category", "science")
	closer.Close()

	data, err := os.ReadFile(path)
	assert.Equal(t, nil, err)
	assert.Equal(t, false, strings.Contains(string(data), "dropped"))
	assert.Equal(t, true, strings.Contains(string(data), `"category":"science"`))
}

func TestInitTracingDisabled(t *testing.T) {
	cleanup, err := InitTracing(context.Background(), "", "test")

	assert.Equal(t, nil, err)
	cleanup()
}
