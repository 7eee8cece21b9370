package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateConfig runs the test in an empty directory with no config env set.
func isolateConfig(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"BLOG_CONFIG", "BLOG_ADDR", "BLOG_DB", "BLOG_AUTH", "BLOG_TZ", "BLOG_SEED",
		"SECURE_COOKIES", "SESSION_TTL", "SHUTDOWN_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "blog.db", cfg.Database)
	assert.True(t, cfg.AuthEnabled)
	assert.False(t, cfg.SecureCookies)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())
}

func TestLoadConfig_File(t *testing.T) {
	dir := isolateConfig(t)

	yaml := `
addr: ":9000"
database: posts.db
auth_enabled: false
session_ttl: 2h
log_format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "posts.db", cfg.Database)
	assert.False(t, cfg.AuthEnabled)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := isolateConfig(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9000\"\nauth_enabled: false\n"), 0o600))

	t.Setenv("BLOG_CONFIG", path)
	t.Setenv("BLOG_ADDR", ":7000")
	t.Setenv("BLOG_AUTH", "true")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("BLOG_TZ", "UTC")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr)
	assert.True(t, cfg.AuthEnabled)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := isolateConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BLOG_DB=from-dotenv.db\n"), 0o600))

	// godotenv does not override variables that are already set, even
	// to the empty string, so clear it entirely.
	os.Unsetenv("BLOG_DB")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.Database)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	isolateConfig(t)
	t.Setenv("BLOG_CONFIG", "does-not-exist.yaml")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"bad bool", "BLOG_AUTH", "maybe"},
		{"bad duration", "SESSION_TTL", "soon"},
		{"negative ttl", "SESSION_TTL", "-1h"},
		{"bad timezone", "BLOG_TZ", "Mars/Olympus"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad log format", "LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfig(t)
			t.Setenv(tt.env, tt.val)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
