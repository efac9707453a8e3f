package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SECRET_KEY", "0123456789abcdef0123")
	t.Setenv("GOOGLE_API_KEY", "test-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite://daptic.db", cfg.DatabaseURL)
	assert.Equal(t, "", cfg.RedisURL)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/models", cfg.GeminiBaseURL)
	assert.Equal(t, 30*time.Second, cfg.GeminiTimeout)
	assert.False(t, cfg.GeminiVerifyModel)
	assert.Equal(t, "instruction.txt", cfg.InstructionFile)
	assert.Equal(t, 2000, cfg.MaxPromptLength)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8081")
	t.Setenv("GEMINI_TIMEOUT", "5s")
	t.Setenv("MAX_PROMPT_LENGTH", "42")
	t.Setenv("GEMINI_VERIFY_MODEL", "true")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/daptic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.GeminiTimeout)
	assert.Equal(t, 42, cfg.MaxPromptLength)
	assert.True(t, cfg.GeminiVerifyModel)
	assert.Equal(t, "postgres://u:p@localhost:5432/daptic", cfg.DatabaseURL)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing secret key", "SECRET_KEY"},
		{"missing api key", "GOOGLE_API_KEY"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.unset, "")

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"short secret", "SECRET_KEY", "short"},
		{"zero prompt cap", "MAX_PROMPT_LENGTH", "0"},
		{"negative timeout", "GEMINI_TIMEOUT", "-1s"},
		{"unknown log format", "LOG_FORMAT", "xml"},
		{"non-numeric prompt cap", "MAX_PROMPT_LENGTH", "abc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
