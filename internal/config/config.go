package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// State backends
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	ServerPort  string
	BaseURL     string
	FrontendURL string
	EnableHSTS  bool
	APIToken    string
	RateLimit   string

	StateBackend string
	StateDir     string
	DatabaseURL  string
	RedisURL     string
	RedisPrefix  string

	RabbitMQURL      string
	RabbitMQPrefetch int

	OpenAIKey  string
	AIProvider string
	AIModel    string
	AIBaseURL  string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	NotifyEmail  string

	TelegramToken  string
	TelegramChatID int64

	TickInterval      time.Duration
	HeartbeatInterval time.Duration
	AlarmInterval     time.Duration
	SpeechDelay       time.Duration
	ActivityWindow    time.Duration

	SeedFile string

	LogFormat       string
	ServerDebugMode bool
	WorkerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:  getEnvBool("ENABLE_HSTS", false),
		APIToken:    getEnv("API_TOKEN", ""),
		RateLimit:   getEnv("RATE_LIMIT", "5-S"),

		StateBackend: strings.ToLower(getEnv("STATE_BACKEND", BackendFile)),
		StateDir:     getEnv("STATE_DIR", "./data"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		RedisPrefix:  getEnv("REDIS_PREFIX", ""),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),

		OpenAIKey:  getEnv("OPENAI_API_KEY", ""),
		AIProvider: getEnv("AI_PROVIDER", "openai"),
		AIModel:    getEnv("AI_MODEL", ""),
		AIBaseURL:  getEnv("AI_BASE_URL", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		NotifyEmail:  getEnv("NOTIFY_EMAIL", ""),

		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: getEnvInt64("TELEGRAM_CHAT_ID", 0),

		TickInterval:      getEnvDuration("TICK_INTERVAL", 60*time.Second),
		HeartbeatInterval: getEnvDuration("HEARTBEAT_INTERVAL", 30*time.Second),
		AlarmInterval:     getEnvDuration("ALARM_INTERVAL", 5*time.Second),
		SpeechDelay:       getEnvDuration("SPEECH_DELAY", time.Second),
		ActivityWindow:    getEnvDuration("ACTIVITY_WINDOW", 2*time.Minute),

		SeedFile: getEnv("SEED_FILE", ""),

		LogFormat:       getEnv("LOG_FORMAT", "json"),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode: getEnvBool("WORKER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.StateBackend {
	case BackendFile:
		if c.StateDir == "" {
			errs = append(errs, errors.New("STATE_DIR is required for the file backend"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STATE_BACKEND %q", c.StateBackend))
	}

	if c.SMTPHost != "" && (c.SMTPFrom == "" || c.NotifyEmail == "") {
		errs = append(errs, errors.New("SMTP_FROM and NOTIFY_EMAIL are required when SMTP_HOST is set"))
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		errs = append(errs, errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set"))
	}
	if c.TickInterval <= 0 || c.HeartbeatInterval <= 0 {
		errs = append(errs, errors.New("TICK_INTERVAL and HEARTBEAT_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}

// EmailEnabled reports whether reminder email delivery is configured
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

// TelegramEnabled reports whether reminder delivery over Telegram is configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// QueueEnabled reports whether reminders are handed to the worker over RabbitMQ
func (c *Config) QueueEnabled() bool {
	return c.RabbitMQURL != ""
}

// RequireQueue returns an error unless RabbitMQ is configured. The worker cannot run without it.
func (c *Config) RequireQueue() error {
	if !c.QueueEnabled() {
		return errors.New("RABBITMQ_URL is required for the reminder worker")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
