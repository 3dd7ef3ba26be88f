package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brizzai/loopback-login/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "login.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o600))

	l, err := NewLogger(&config.LoggingConfig{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	l.Info("listener bound", zap.String("bind_address", "localhost:8085"))
	l.Debug("dropped")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "previous run\n"), "log file is appended to")
	assert.Contains(t, string(data), `"bind_address":"localhost:8085"`)
	assert.NotContains(t, string(data), "dropped")
}

func TestNewLogger_ConsoleFileHasNoColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "login.log")
	l, err := NewLogger(&config.LoggingConfig{Level: "debug", Format: "console", Color: true, File: path})
	require.NoError(t, err)

	l.Warn("second request rejected")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WARN")
	assert.NotContains(t, string(data), "\x1b[")
}

func TestNewLogger_UnwritableFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, err := NewLogger(&config.LoggingConfig{Level: "info", File: filepath.Join(blocker, "login.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create log directory")
}

func TestNewLogger_InvalidSettings(t *testing.T) {
	_, err := NewLogger(&config.LoggingConfig{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	_, err = NewLogger(&config.LoggingConfig{Level: "info", Format: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := SetLogger(zap.New(core))

	Debug("waiting for callback", zap.String("state", "WaitingForCallback"))
	Warn("second request rejected")
	restore()
	Info("not observed")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "WaitingForCallback", logs.All()[0].ContextMap()["state"])
	assert.Equal(t, "second request rejected", logs.All()[1].Message)
}
