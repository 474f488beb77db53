package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCtx(t *testing.T) {
	var buf bytes.Buffer
	logger := Logger(&buf, true, slog.LevelInfo)

	ctx := AppendCtx(context.Background(), slog.String("name", "tiffctl"))
	ctx = AppendCtx(ctx, slog.String("git", "abc123"))
	logger.InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "tiffctl", record["name"])
	assert.Equal(t, "abc123", record["git"])
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Logger(&buf, false, slog.LevelWarn)

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept", "k", 1)
	assert.Contains(t, buf.String(), "msg=kept")
	assert.Contains(t, buf.String(), "k=1")
}

func TestRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiffctl.log")
	w := RotatingFile(path)

	logger := Logger(w, true, slog.LevelDebug)
	logger.Debug("to file")
	require.NoError(t, w.Close())

	assert.FileExists(t, path)
}
