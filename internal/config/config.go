// Package config provides environment configuration for the API server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Agent settings
	MaxIterations        int
	MaxHistoryEntries    int
	ContextWindowEntries int
	WordStreamDelay      time.Duration
	UseMockAgent         bool

	// LLM settings
	LLMProvider     string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	LLMModel        string
	LLMBaseURL      string
	LLMTimeout      time.Duration
	LLMTemperature  float64
	LLMMaxTokens    int

	// Downstream API settings
	CalendarBaseURL string
	Environment     string

	// NATS settings (optional event mirror)
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// JWT settings
	AuthEnabled bool
	JWTSecret   string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// fileConfig is the YAML overlay shape. Only set fields override the
// environment-derived values.
type fileConfig struct {
	ServerPort           string  `yaml:"server_port"`
	MaxIterations        int     `yaml:"max_iterations"`
	MaxHistoryEntries    int     `yaml:"max_history_entries"`
	ContextWindowEntries int     `yaml:"context_window_entries"`
	LLMProvider          string  `yaml:"llm_provider"`
	LLMModel             string  `yaml:"llm_model"`
	LLMBaseURL           string  `yaml:"llm_base_url"`
	LLMTemperature       float64 `yaml:"llm_temperature"`
	LLMMaxTokens         int     `yaml:"llm_max_tokens"`
	CalendarBaseURL      string  `yaml:"calendar_base_url"`
	LogLevel             string  `yaml:"log_level"`
}

const (
	calendarBaseURLStaging    = "https://calendar-api.staging.glance.dev"
	calendarBaseURLProduction = "https://calendar-api.glance.dev"
)

// Load reads configuration from environment variables, then applies an
// optional YAML overlay named by CONFIG_FILE.
func Load() (*Config, error) {
	env := getEnv("APP_ENV", "staging")

	calendarDefault := calendarBaseURLStaging
	if env == "production" {
		calendarDefault = calendarBaseURLProduction
	}

	cfg := &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Minute),

		// Agent
		MaxIterations:        getIntEnv("MAX_ITERATIONS", 5),
		MaxHistoryEntries:    getIntEnv("MAX_HISTORY_ENTRIES", 50),
		ContextWindowEntries: getIntEnv("CONTEXT_WINDOW_ENTRIES", 10),
		WordStreamDelay:      getDurationEnv("WORD_STREAM_DELAY", 15*time.Millisecond),
		UseMockAgent:         getBoolEnv("USE_MOCK_AGENT", false),

		// LLM
		LLMProvider:     getEnv("LLM_PROVIDER", "openai"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		LLMModel:        getEnv("LLM_MODEL", ""),
		LLMBaseURL:      getEnv("LLM_BASE_URL", ""),
		LLMTimeout:      getDurationEnv("LLM_TIMEOUT", 300*time.Second),
		LLMTemperature:  getFloatEnv("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:    getIntEnv("LLM_MAX_TOKENS", 4096),

		// Downstream APIs
		CalendarBaseURL: getEnv("CALENDAR_BASE_URL", calendarDefault),
		Environment:     env,

		// NATS
		NATSURL:      getEnv("NATS_URL", ""),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// JWT
		AuthEnabled: getBoolEnv("AUTH_ENABLED", false),
		JWTSecret:   getEnv("JWT_SECRET", "development-secret-change-in-production"),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.ServerPort != "" {
		c.ServerPort = fc.ServerPort
	}
	if fc.MaxIterations > 0 {
		c.MaxIterations = fc.MaxIterations
	}
	if fc.MaxHistoryEntries > 0 {
		c.MaxHistoryEntries = fc.MaxHistoryEntries
	}
	if fc.ContextWindowEntries > 0 {
		c.ContextWindowEntries = fc.ContextWindowEntries
	}
	if fc.LLMProvider != "" {
		c.LLMProvider = fc.LLMProvider
	}
	if fc.LLMModel != "" {
		c.LLMModel = fc.LLMModel
	}
	if fc.LLMBaseURL != "" {
		c.LLMBaseURL = fc.LLMBaseURL
	}
	if fc.LLMTemperature > 0 {
		c.LLMTemperature = fc.LLMTemperature
	}
	if fc.LLMMaxTokens > 0 {
		c.LLMMaxTokens = fc.LLMMaxTokens
	}
	if fc.CalendarBaseURL != "" {
		c.CalendarBaseURL = fc.CalendarBaseURL
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
