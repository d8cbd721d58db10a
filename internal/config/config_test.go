package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "http://backend.local/api/")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("WEBHOOK_SECRET", "hook-secret")
	for _, k := range []string{
		"LLM_PROVIDER", "PORT", "CACHE_TTL", "CACHE_SWEEP_INTERVAL",
		"RATE_LIMIT_PER_MINUTE", "TIMEZONE", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://backend.local/api", cfg.BackendURL)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.CacheSweepInterval)
	assert.Equal(t, 30, cfg.MessageRateLimit)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "hook-secret", cfg.WebhookSecret)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("WEBHOOK_SECRET", "")
	t.Setenv("LLM_PROVIDER", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_API_URL")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.Contains(t, err.Error(), "WEBHOOK_SECRET")
}

func TestLoad_GeminiNeedsItsOwnKey(t *testing.T) {
	setRequired(t)
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoad_UnknownProvider(t *testing.T) {
	setRequired(t)
	t.Setenv("LLM_PROVIDER", "llama")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_CacheTTLAsSeconds(t *testing.T) {
	setRequired(t)
	t.Setenv("CACHE_TTL", "120")
	t.Setenv("CACHE_SWEEP_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.CacheSweepInterval)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	setRequired(t)
	t.Setenv("TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_CORSList(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoad_NonPositiveDurationsUseDefaults(t *testing.T) {
	for _, v := range []string{"0", "-5", "0s", "-1m"} {
		setRequired(t)
		t.Setenv("CACHE_SWEEP_INTERVAL", v)
		t.Setenv("CACHE_TTL", v)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, cfg.CacheSweepInterval, v)
		assert.Equal(t, time.Hour, cfg.CacheTTL, v)
	}
}
