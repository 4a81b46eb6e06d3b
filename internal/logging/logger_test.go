package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithFormat_JSONRenamesError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithFormat(&buf, slog.LevelInfo, "json")

	log.Debug("hidden")
	log.Warn("request failed", "error", "boom")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "request failed", rec["msg"])
	assert.Equal(t, "boom", rec["err"])
	assert.NotContains(t, rec, "error")
}

func TestNewWithFormat_Text(t *testing.T) {
	var buf bytes.Buffer
	NewWithFormat(&buf, slog.LevelDebug, "text").Debug("step", "error", "x")
	assert.Contains(t, buf.String(), "err=x")
}
