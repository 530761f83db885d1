package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	StaticDir     string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	AdminJWTSecret     string
	AdminTokenTTL      time.Duration
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Appointment booking
	BookingSimulate     bool
	BookingSubmitDelay  time.Duration
	AvailabilitySeed    int64
	SessionTTL          time.Duration
	PracticeTimezone    string
	PracticePhone       string
	PracticeNotifyEmail string

	// Live chat
	ChatReplyDelay time.Duration
	ChatHistoryTTL time.Duration

	// Email
	EmailProvider    string
	EmailFrom        string
	SendGridAPIKey   string
	SendGridFromName string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		StaticDir:     getEnv("STATIC_DIR", ""),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		AdminTokenTTL:      getEnvAsDuration("ADMIN_TOKEN_TTL", 12*time.Hour),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),

		BookingSimulate:     getEnvAsBool("BOOKING_SIMULATE", true),
		BookingSubmitDelay:  getEnvAsDuration("BOOKING_SUBMIT_DELAY", 2*time.Second),
		AvailabilitySeed:    getEnvAsInt64("AVAILABILITY_SEED", 0),
		SessionTTL:          getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		PracticeTimezone:    getEnv("PRACTICE_TZ", "America/New_York"),
		PracticePhone:       getEnv("PRACTICE_PHONE", "(336) 569-7223"),
		PracticeNotifyEmail: getEnv("PRACTICE_NOTIFY_EMAIL", ""),

		ChatReplyDelay: getEnvAsDuration("CHAT_REPLY_DELAY", 1500*time.Millisecond),
		ChatHistoryTTL: getEnvAsDuration("CHAT_HISTORY_TTL", 24*time.Hour),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		EmailFrom:        getEnv("EMAIL_FROM", getEnv("SENDGRID_FROM_EMAIL", "")),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		SendGridFromName: getEnv("SENDGRID_FROM_NAME", "NC Telepsychiatry"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// PracticeLocation resolves the practice timezone, falling back to UTC.
func (c *Config) PracticeLocation() *time.Location {
	loc, err := time.LoadLocation(c.PracticeTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
