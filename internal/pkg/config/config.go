package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type PostgresConfig struct {
	Enabled  bool
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

// LiteAPIConfig holds the hotel inventory provider settings.
type LiteAPIConfig struct {
	APIKey  string
	DataURL string
	BookURL string
	Timeout time.Duration
}

// IsSandbox reports whether the configured key belongs to the provider sandbox.
func (c LiteAPIConfig) IsSandbox() bool {
	return strings.HasPrefix(c.APIKey, "sand")
}

type ChatConfig struct {
	Provider     string // "xai" or "gemini"
	XAIAPIKey    string
	XAIURL       string
	XAIModel     string
	GeminiAPIKey string
	GeminiModel  string
	MaxTokens    int
	Temperature  float32
}

// APIKey returns the credential for the selected chat provider.
func (c ChatConfig) APIKey() string {
	if c.Provider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.XAIAPIKey
}

// KeyName returns the environment variable that carries the active provider key.
func (c ChatConfig) KeyName() string {
	if c.Provider == "gemini" {
		return "GEMINI_API_KEY"
	}
	return "XAI_API_KEY"
}

type MailerLiteConfig struct {
	APIKey        string
	URL           string
	GroupID       string
	SaveInterests bool
}

type CheckoutConfig struct {
	PublicBaseURL         string
	StateSecret           string
	AccountPaymentEnabled bool
	GuestProfileTTL       time.Duration
	BookingTTL            time.Duration
	SessionTTL            time.Duration
	HoldClaimTTL          time.Duration
}

type LogConfig struct {
	Level string
	File  string
}

type Config struct {
	Repositories RepositoriesConfig
	ServerPort   string
	MetricsAddr  string
	PprofAddr    string
	OTLPEndpoint string
	SessionStore string // "memory" or "redis"
	LiteAPI      LiteAPIConfig
	Chat         ChatConfig
	MailerLite   MailerLiteConfig
	Checkout     CheckoutConfig
	Log          LogConfig
}

func Load() (*Config, error) {
	liteKey := os.Getenv("LITEAPI_KEY")

	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5454"),
				DB:       getEnvOrDefault("POSTGRES_DB", "saferstays"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
			Redis: RedisConfig{
				Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getIntOrDefault("REDIS_DB", 0),
			},
		},
		ServerPort:   getEnvOrDefault("SERVER_PORT", "8091"),
		MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
		PprofAddr:    getEnvOrDefault("PPROF_ADDR", ":6060"),
		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4318"),
		SessionStore: getEnvOrDefault("SESSION_STORE", "memory"),
		LiteAPI: LiteAPIConfig{
			APIKey:  liteKey,
			DataURL: getEnvOrDefault("LITEAPI_DATA_URL", "https://api.liteapi.travel/v3.0"),
			BookURL: getEnvOrDefault("LITEAPI_BOOK_URL", "https://book.liteapi.travel/v3.0"),
			Timeout: getDurationOrDefault("LITEAPI_TIMEOUT", 30*time.Second),
		},
		Chat: ChatConfig{
			Provider:     strings.ToLower(getEnvOrDefault("CHAT_PROVIDER", "xai")),
			XAIAPIKey:    os.Getenv("XAI_API_KEY"),
			XAIURL:       getEnvOrDefault("XAI_API_URL", "https://api.x.ai/v1/chat/completions"),
			XAIModel:     getEnvOrDefault("XAI_MODEL", "grok-3-mini"),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
			MaxTokens:    150,
			Temperature:  0.3,
		},
		MailerLite: MailerLiteConfig{
			APIKey:        os.Getenv("MAILERLITE_API_KEY"),
			URL:           getEnvOrDefault("MAILERLITE_URL", "https://connect.mailerlite.com/api/subscribers"),
			GroupID:       strings.TrimSpace(os.Getenv("MAILERLITE_GROUP_ID")),
			SaveInterests: os.Getenv("MAILERLITE_SAVE_INTERESTS") == "1",
		},
		Checkout: CheckoutConfig{
			PublicBaseURL:         strings.TrimRight(getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8091"), "/"),
			StateSecret:           os.Getenv("CHECKOUT_STATE_SECRET"),
			AccountPaymentEnabled: getBoolOrDefault("ACCOUNT_PAYMENT_ENABLED", strings.HasPrefix(liteKey, "sand")),
			GuestProfileTTL:       getDurationOrDefault("GUEST_PROFILE_TTL", time.Hour),
			BookingTTL:            getDurationOrDefault("BOOKING_TTL", 24*time.Hour),
			SessionTTL:            getDurationOrDefault("CHECKOUT_SESSION_TTL", 2*time.Hour),
			HoldClaimTTL:          getDurationOrDefault("HOLD_CLAIM_TTL", 7*24*time.Hour),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
	}

	// Postgres is optional: without a password the service runs on the session store alone.
	cfg.Repositories.Postgres.Enabled = cfg.Repositories.Postgres.Password != ""

	switch cfg.SessionStore {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("SESSION_STORE must be memory or redis, got %q", cfg.SessionStore)
	}
	switch cfg.Chat.Provider {
	case "xai", "gemini":
	default:
		return nil, fmt.Errorf("CHAT_PROVIDER must be xai or gemini, got %q", cfg.Chat.Provider)
	}
	if cfg.Checkout.StateSecret == "" {
		return nil, fmt.Errorf("CHECKOUT_STATE_SECRET environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
