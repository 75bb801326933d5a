package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

	logger.WithComponent("fetch").With("key", "home-outline").
		Warn(context.Background(), errors.New("boom"), "Icon fetch failed", "locator", "assets/outline/home.svg")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "Icon fetch failed", record["msg"])
	assert.Equal(t, "fetch", record["component"])
	assert.Equal(t, "boom", record["error"])
	assert.Equal(t, "home-outline", record["key"])
	assert.Equal(t, "assets/outline/home.svg", record["locator"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Format: "text", Output: &buf})

	logger.Debug(context.Background(), "hidden debug")
	logger.Info(context.Background(), "hidden info")
	logger.Error(context.Background(), nil, "visible error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible error")
}

func TestLoggerSkipsMalformedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "text", Output: &buf})

	logger.Info(context.Background(), "fields", 42, "ignored", "ok", "yes", "dangling")

	out := buf.String()
	assert.Contains(t, out, "ok=yes")
	assert.NotContains(t, out, "ignored")
	assert.NotContains(t, out, "dangling")
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	assert.NotPanics(t, func() {
		logger.Error(context.Background(), errors.New("x"), "discarded")
		logger.With("a", 1).WithComponent("c").Warn(context.Background(), nil, "discarded")
	})
}

func TestPerfLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "text", Output: &buf})

	op := StartOperation(logger, "generate")
	op.End(context.Background(), "icons", 3)

	out := buf.String()
	assert.Contains(t, out, "Operation completed")
	assert.Contains(t, out, "operation=generate")
	assert.Contains(t, out, "icons=3")
	assert.True(t, strings.Contains(out, "duration_ms="))
}
