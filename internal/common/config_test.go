package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SCHEDULE_CONFIG", "LLM_PROVIDER", "OPENAI_API_KEY", "GEMINI_API_KEY",
		"LLM_MODELS", "LLM_TEMPERATURE", "LLM_CALL_TIMEOUT", "DB_DRIVER", "DB_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearLLMEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1-mini"}, cfg.LLM.Models)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 30*time.Second, cfg.LLM.CallTimeout)
	assert.False(t, cfg.LLM.Configured(), "no API key means the cascade is skipped")
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	clearLLMEnv(t)

	path := filepath.Join(t.TempDir(), "schedule.yaml")
	yml := `
llm:
  provider: gemini
  api_key: from-file
  models: [gemini-2.5-pro, gemini-2.5-flash]
  call_timeout: 12s
database:
  driver: sqlite
  dsn: classes.db
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, []string{"gemini-2.5-pro", "gemini-2.5-flash"}, cfg.LLM.Models)
	assert.Equal(t, 12*time.Second, cfg.LLM.CallTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.LLM.Configured())
}

func TestLoadConfigModelListFromEnv(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("LLM_MODELS", " a , ,b ")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cfg.LLM.Models)
}

func TestLoadConfigBadFile(t *testing.T) {
	clearLLMEnv(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.LLM.Provider = "acme" }},
		{"zero timeout", func(c *Config) { c.LLM.CallTimeout = 0 }},
		{"db driver without dsn", func(c *Config) { c.Database.Driver = "postgres" }},
		{"unknown db driver", func(c *Config) { c.Database.Driver = "mysql"; c.Database.DSN = "x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
