package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds process-wide settings. Read once at startup, treated as immutable.
type Config struct {
	Port string

	// Backend
	BackendURL     string
	BackendTimeout time.Duration

	// LLM
	LLMProvider   string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string

	// Cache
	CacheTTL           time.Duration
	CacheSweepInterval time.Duration

	// Shared secret callers of /process and /users/* send in X-Webhook-Secret
	WebhookSecret string

	// Rate limits, per minute
	MessageRateLimit int
	AuthRateLimit    int

	LogLevel           string
	Location           *time.Location
	CORSAllowedOrigins []string
}

// Load reads .env (if present) and the environment.
// All missing required variables are reported in one error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var missing []string

	cfg.BackendURL = strings.TrimRight(os.Getenv("BACKEND_API_URL"), "/")
	if cfg.BackendURL == "" {
		missing = append(missing, "BACKEND_API_URL")
	}

	cfg.WebhookSecret = strings.TrimSpace(os.Getenv("WEBHOOK_SECRET"))
	if cfg.WebhookSecret == "" {
		missing = append(missing, "WEBHOOK_SECRET")
	}

	cfg.LLMProvider = strings.ToLower(getEnvString("LLM_PROVIDER", ProviderOpenAI))
	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GeminiKey = os.Getenv("GEMINI_API_KEY")

	switch cfg.LLMProvider {
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case ProviderGemini:
		if cfg.GeminiKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	loc, err := time.LoadLocation(getEnvString("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	cfg.Port = getEnvString("PORT", "8080")
	cfg.BackendTimeout = getEnvDuration("BACKEND_TIMEOUT", 10*time.Second)
	cfg.OpenAIModel = getEnvString("OPENAI_MODEL", "gpt-4o-mini")
	cfg.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	cfg.GeminiModel = getEnvString("GEMINI_MODEL", "gemini-2.0-flash")
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", time.Hour)
	cfg.CacheSweepInterval = getEnvDuration("CACHE_SWEEP_INTERVAL", 5*time.Minute)
	cfg.MessageRateLimit = getEnvInt("RATE_LIMIT_PER_MINUTE", 30)
	cfg.AuthRateLimit = getEnvInt("AUTH_RATE_LIMIT_PER_MINUTE", 10)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.CORSAllowedOrigins = splitList(getEnvString("CORS_ALLOWED_ORIGINS", "*"))

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// getEnvDuration accepts Go durations ("90s", "1h") and bare integers as seconds.
// Zero and negative values fall back to the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		d = time.Duration(secs) * time.Second
	} else if d, err = time.ParseDuration(v); err != nil {
		return defaultVal
	}
	if d <= 0 {
		return defaultVal
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
