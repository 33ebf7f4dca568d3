package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcitycakeco/cakeorders/internal/logger"
)

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, slog.LevelInfo)

	l.Debug("hidden")
	l.Info("order created", "id", 42)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "order created", rec["msg"])
	assert.EqualValues(t, 42, rec["id"])
}

func TestNewSystemLogger_CreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l, closer, err := logger.NewSystemLogger(dir, slog.LevelInfo, false)
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "system.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestTee_FansOutByLevel(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	base := logger.New(&infoBuf, slog.LevelInfo)
	debug := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	l := logger.Tee(base, debug, nil).With("component", "dispatcher")
	l.Debug("rule matched")
	l.Info("notification sent")

	assert.NotContains(t, infoBuf.String(), "rule matched")
	assert.Contains(t, infoBuf.String(), `"component":"dispatcher"`)
	assert.Contains(t, debugBuf.String(), "rule matched")
	assert.Contains(t, debugBuf.String(), "notification sent")
}

func TestTee_NoExtraHandlers(t *testing.T) {
	base := logger.New(&bytes.Buffer{}, slog.LevelInfo)
	assert.Same(t, base, logger.Tee(base))
}
