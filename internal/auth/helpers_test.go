package auth

import (
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// freePort returns a loopback port that was free a moment ago
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

// unsetEnv removes key for the duration of the test
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func clearOAuthEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OAUTH_CLIENT_ID", "OAUTH_CLIENT_SECRET", "OAUTH_REDIRECT_URI",
		"GOOGLE_OAUTH_CLIENT_ID", "GOOGLE_OAUTH_CLIENT_SECRET", "GOOGLE_OAUTH_REDIRECT_URI",
	} {
		unsetEnv(t, key)
	}
}

func mustConfig(t *testing.T, redirectURI string) OAuthConfig {
	t.Helper()
	cfg, err := NewOAuthConfig("client-123", "secret-456", redirectURI)
	require.NoError(t, err)
	return cfg
}
