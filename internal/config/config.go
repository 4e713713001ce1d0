package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"impactdash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig
	Data       DataConfig
	LLM        LLMConfig
	Chat       ChatConfig
	Newsletter NewsletterConfig
	Auth       AuthConfig
	Database   DatabaseConfig
	LogLevel   string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds the location of the static JSON files
type DataConfig struct {
	Dir         string
	Watch       bool
	SectorsFile string
}

// LLMConfig holds provider settings. Keys may be empty; a missing key is
// reported when a chat request needs it.
type LLMConfig struct {
	Provider      string
	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	Timeout       time.Duration
	PromptsDir    string
}

// ChatConfig holds chat limits
type ChatConfig struct {
	DailyLimit        int
	DescriptionBudget int
	NewsLimit         int
	HistoryLimit      int
}

// NewsletterConfig holds mailing provider settings
type NewsletterConfig struct {
	APIKey     string
	AudienceID string
}

// AuthConfig holds the admin credentials and cookie signing secret
type AuthConfig struct {
	Username     string
	PasswordHash string
	Secret       string
	TokenTTL     time.Duration
	SecureCookie bool
}

// DatabaseConfig holds the optional database connection
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.URL) != ""
}

// LoadDotEnv loads .env files if present. Missing files are not an error.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:     loadServerConfig(),
		Data:       loadDataConfig(),
		LLM:        loadLLMConfig(),
		Chat:       loadChatConfig(),
		Newsletter: loadNewsletterConfig(),
		Auth:       loadAuthConfig(),
		Database:   DatabaseConfig{URL: strings.TrimSpace(os.Getenv("DATABASE_URL"))},
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "3000"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDataConfig() DataConfig {
	return DataConfig{
		Dir:         getEnvOrDefault("DATA_DIR", "public/data"),
		Watch:       getEnvBoolOrDefault("DATA_WATCH", false),
		SectorsFile: getEnvOrDefault("SECTORS_FILE", ""),
	}
}

func loadLLMConfig() LLMConfig {
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		geminiKey = os.Getenv("GOOGLE_AI_API_KEY")
	}

	return LLMConfig{
		Provider:      strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "gemini")),
		GeminiKey:     geminiKey,
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-pro"),
		GeminiBaseURL: getEnvOrDefault("GEMINI_BASE_URL", ""),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Timeout:       getEnvDurationOrDefault("LLM_TIMEOUT", 120*time.Second),
		PromptsDir:    getEnvOrDefault("PROMPTS_DIR", ""),
	}
}

func loadChatConfig() ChatConfig {
	return ChatConfig{
		DailyLimit:        getEnvIntOrDefault("CHAT_DAILY_LIMIT", 20),
		DescriptionBudget: getEnvIntOrDefault("CHAT_DESCRIPTION_BUDGET", 150),
		NewsLimit:         getEnvIntOrDefault("CHAT_NEWS_LIMIT", 30),
		HistoryLimit:      getEnvIntOrDefault("CHAT_HISTORY_LIMIT", 20),
	}
}

func loadNewsletterConfig() NewsletterConfig {
	return NewsletterConfig{
		APIKey:     os.Getenv("RESEND_API_KEY"),
		AudienceID: os.Getenv("RESEND_AUDIENCE_ID"),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		Username:     getEnvOrDefault("ADMIN_USERNAME", "admin"),
		PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		Secret:       os.Getenv("AUTH_SECRET"),
		TokenTTL:     getEnvDurationOrDefault("AUTH_TOKEN_TTL", 9*time.Hour),
		SecureCookie: getEnvBoolOrDefault("AUTH_SECURE_COOKIE", false),
	}
}

func validateConfig(config *Config) error {
	if config.Data.Dir == "" {
		return errors.ConfigInvalid("data directory is required")
	}
	if config.Chat.DailyLimit <= 0 {
		return errors.ConfigInvalid("CHAT_DAILY_LIMIT must be positive")
	}
	if config.Chat.HistoryLimit < 0 {
		return errors.ConfigInvalid("CHAT_HISTORY_LIMIT must not be negative")
	}
	if config.Auth.TokenTTL <= 0 {
		return errors.ConfigInvalid("AUTH_TOKEN_TTL must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
