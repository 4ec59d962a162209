package config

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearConfigEnv unsets all config env vars so tests start clean.
func clearConfigEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"TODUE_SERVER_URL",
		"TODUE_WS_URL",
		"TODUE_EMAIL",
		"TODUE_PASSWORD",
		"TODUE_VIEW_DAYS",
		"TODUE_ANCHOR_DATE",
		"TODUE_CACHE_PATH",
		"TODUE_LOG_FILE",
		"ENVIRONMENT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// setMinimalEnv sets the required credentials.
func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TODUE_EMAIL", "test@example.com")
	t.Setenv("TODUE_PASSWORD", "secret123")
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)
	setMinimalEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, "ws://localhost:8080/ws", cfg.WebsocketURL)
	assert.Equal(t, 1, cfg.ViewDays)
	assert.NotEmpty(t, cfg.AnchorDate)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())

	assert.True(t, strings.HasSuffix(cfg.CachePath, "cache.db"), "cache path %q", cfg.CachePath)
	assert.True(t, strings.HasSuffix(cfg.LogFile, "todue.log"), "log file %q", cfg.LogFile)
}

func TestLoad_MissingCredentials(t *testing.T) {
	clearConfigEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TODUE_EMAIL")

	t.Setenv("TODUE_EMAIL", "test@example.com")

	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TODUE_PASSWORD")
}

func TestLoad_ViewDays(t *testing.T) {
	clearConfigEnv(t)
	setMinimalEnv(t)

	for _, valid := range []string{"1", "3", "5", "7"} {
		t.Setenv("TODUE_VIEW_DAYS", valid)

		_, err := Load()
		assert.NoError(t, err, "view days %s", valid)
	}

	for _, invalid := range []string{"0", "2", "9", "-1"} {
		t.Setenv("TODUE_VIEW_DAYS", invalid)

		_, err := Load()
		assert.Error(t, err, "view days %s", invalid)
	}
}

func TestLoad_AnchorDate(t *testing.T) {
	clearConfigEnv(t)
	setMinimalEnv(t)

	t.Setenv("TODUE_ANCHOR_DATE", "2026-03-02")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", cfg.AnchorDate)

	t.Setenv("TODUE_ANCHOR_DATE", "03/02/2026")

	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_ServerURLScheme(t *testing.T) {
	clearConfigEnv(t)
	setMinimalEnv(t)

	t.Setenv("TODUE_SERVER_URL", "ftp://example.com")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ExplicitWebsocketURLKept(t *testing.T) {
	clearConfigEnv(t)
	setMinimalEnv(t)

	t.Setenv("TODUE_WS_URL", "wss://elsewhere.example.com/push")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "wss://elsewhere.example.com/push", cfg.WebsocketURL)
}

func TestDeriveWebsocketURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "http://localhost:8080", want: "ws://localhost:8080/ws"},
		{in: "https://todue.example.com", want: "wss://todue.example.com/ws"},
		{in: "https://todue.example.com/", want: "wss://todue.example.com/ws"},
	}

	for _, tt := range tests {
		got, err := deriveWebsocketURL(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := deriveWebsocketURL("ftp://example.com")
	assert.Error(t, err)
}

func TestAPIBaseURL(t *testing.T) {
	cfg := &Config{ServerURL: "http://localhost:8080/"}
	assert.Equal(t, "http://localhost:8080/api", cfg.APIBaseURL())
}

func TestIsProduction(t *testing.T) {
	clearConfigEnv(t)
	setMinimalEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
