package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newFlagSet(t, "--config", writeConfig(t, "{}\n")))
	require.NoError(t, err)

	assert.Equal(t, DefaultCallbackTimeout, cfg.Login.CallbackTimeout)
	assert.Equal(t, OutputText, cfg.Login.Output)
	assert.False(t, cfg.Login.NoBrowser)
	assert.False(t, cfg.Login.Verify)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Empty(t, cfg.Logging.File)
}

func TestLoad_LogFile(t *testing.T) {
	path := writeConfig(t, "logging:\n  file: /tmp/from-file.log\n")

	cfg, err := Load(newFlagSet(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-file.log", cfg.Logging.File)

	cfg, err = Load(newFlagSet(t, "--config", path, "--log-file", "/tmp/from-flag.log"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-flag.log", cfg.Logging.File)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: info
  format: json
login:
  callback_timeout: 2m
  output: yaml
  verify: true
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := Load(newFlagSet(t, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, 2*time.Minute, cfg.Login.CallbackTimeout)
		assert.Equal(t, OutputYAML, cfg.Login.Output)
		assert.True(t, cfg.Login.Verify)
		assert.Equal(t, "json", cfg.Logging.Format)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("LOOPBACK_LOGIN_LOGIN_OUTPUT", "json")
		cfg, err := Load(newFlagSet(t, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, OutputJSON, cfg.Login.Output)
	})

	t.Run("flags override env", func(t *testing.T) {
		t.Setenv("LOOPBACK_LOGIN_LOGIN_OUTPUT", "json")
		cfg, err := Load(newFlagSet(t, "--config", path, "--output", "text", "--timeout", "30s", "--log-level", "debug"))
		require.NoError(t, err)
		assert.Equal(t, OutputText, cfg.Login.Output)
		assert.Equal(t, 30*time.Second, cfg.Login.CallbackTimeout)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})
}

func TestLoad_MissingExplicitConfig(t *testing.T) {
	_, err := Load(newFlagSet(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		login   LoginConfig
		wantErr string
	}{
		{
			name:  "valid",
			login: LoginConfig{Output: OutputJSON, CallbackTimeout: time.Minute},
		},
		{
			name:  "zero timeout waits forever",
			login: LoginConfig{Output: OutputText},
		},
		{
			name:    "unknown output",
			login:   LoginConfig{Output: "xml"},
			wantErr: "unsupported output format",
		},
		{
			name:    "negative timeout",
			login:   LoginConfig{Output: OutputText, CallbackTimeout: -time.Second},
			wantErr: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Login: tt.login}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetVersionInfo(t *testing.T) {
	assert.Contains(t, GetVersionInfo(), "loopback-login version dev")
}
