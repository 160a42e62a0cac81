package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "info")

	logger.Info("sweep started", slog.Int("sources", 3))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sweep started", entry["msg"])
	assert.Equal(t, float64(3), entry["sources"])
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "text", "info")

	logger.Info("sweep started")

	assert.True(t, strings.Contains(buf.String(), "msg=\"sweep started\""), buf.String())
}

func TestNewLogger_DebugFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "info")

	logger.Debug("hidden")

	assert.Empty(t, buf.String())
}

func TestWithRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := WithRunID(newLogger(&buf, "json", "info"), "run-123")

	logger.Info("tagged")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-123", entry["run_id"])
}

func TestWithRunID_Empty(t *testing.T) {
	base := slog.Default()
	assert.Same(t, base, WithRunID(base, ""))
}

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		ctx := WithLogger(context.Background(), logger)

		assert.Same(t, logger, FromContext(ctx))
	})

	t.Run("falls back to default", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContext(context.Background()))
	})
}
