package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impactdash/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"LLM_PROVIDER", "GEMINI_API_KEY", "GOOGLE_AI_API_KEY", "OPENAI_API_KEY",
		"CHAT_DAILY_LIMIT", "DATA_DIR", "ADMIN_USERNAME", "DATABASE_URL", "AUTH_TOKEN_TTL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.GeminiModel)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAIModel)
	assert.Empty(t, cfg.LLM.GeminiKey)
	assert.Equal(t, 20, cfg.Chat.DailyLimit)
	assert.Equal(t, 150, cfg.Chat.DescriptionBudget)
	assert.Equal(t, 30, cfg.Chat.NewsLimit)
	assert.Equal(t, "public/data", cfg.Data.Dir)
	assert.Equal(t, "admin", cfg.Auth.Username)
	assert.Equal(t, 9*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Database.Enabled())
}

func TestGeminiKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_AI_API_KEY", "google-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "google-key", cfg.LLM.GeminiKey)

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", cfg.LLM.GeminiKey)
}

func TestInvalidDailyLimit(t *testing.T) {
	t.Setenv("CHAT_DAILY_LIMIT", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RESEND_AUDIENCE_ID=aud_123\n"), 0o600))
	t.Setenv("RESEND_AUDIENCE_ID", "")
	require.NoError(t, os.Unsetenv("RESEND_AUDIENCE_ID"))

	LoadDotEnv(path, filepath.Join(dir, "missing.env"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "aud_123", cfg.Newsletter.AudienceID)
}
