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
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"", LevelInfo},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("trace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown log level "trace"`)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn, FormatText, &buf)
	l.Info("hidden")
	l.Warn("shown", "stage", "parse")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "stage=parse")
}

func TestNewJSONTimestamp(t *testing.T) {
	var buf bytes.Buffer
	New(LevelDebug, FormatJSON, &buf).Debug("stage done", "stage", "render")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "stage done", entry["msg"])
	assert.Equal(t, "render", entry["stage"])

	ts, ok := entry["time"].(string)
	require.True(t, ok)
	assert.False(t, strings.Contains(ts, "."), "timestamp should be RFC3339 without fractions: %s", ts)
}

func TestInitReplacesGlobal(t *testing.T) {
	old := Logger()
	t.Cleanup(func() {
		defaultLogger = old
		slog.SetDefault(old)
	})

	var buf bytes.Buffer
	l := Init(LevelDebug, FormatText, &buf)
	assert.Same(t, l, Logger())

	Logger().Debug("global")
	assert.Contains(t, buf.String(), "msg=global")
}

func TestFromContext(t *testing.T) {
	assert.Same(t, Logger(), FromContext(context.Background()))

	var buf bytes.Buffer
	l := New(LevelInfo, FormatText, &buf)
	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}
