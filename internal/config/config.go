// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application.
type Config struct {
	// HTTP
	Port               int
	CORSAllowedOrigins []string

	// Engine
	RulePolicy           string
	AggregationMode      string
	CreditStartDelayDays int

	// Sessions
	SessionStore      string
	SessionTTLMinutes int
	RedisAddr         string
	RedisPassword     string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBUrl      string

	// AWS
	AWSRegion string
	S3Bucket  string

	// Notifications
	SESSenderEmail     string
	DecisionWebhookURL string

	// Application
	Stage    string
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// HTTP
		Port:               getEnvInt("PORT", 8080),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		// Engine
		RulePolicy:           getEnv("RULE_POLICY", "v2"),
		AggregationMode:      getEnv("AGGREGATION_MODE", "collect-all"),
		CreditStartDelayDays: getEnvInt("CREDIT_START_DELAY_DAYS", 15),

		// Sessions
		SessionStore:      getEnv("SESSION_STORE", "memory"),
		SessionTTLMinutes: getEnvInt("SESSION_TTL_MINUTES", 60),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBName:     getEnv("DB_NAME", "credit_decisions"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBUrl:      getEnv("DATABASE_URL", ""),

		// AWS
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:  getEnv("S3_BUCKET", ""),

		// Notifications
		SESSenderEmail:     getEnv("SES_SENDER_EMAIL", ""),
		DecisionWebhookURL: getEnv("DECISION_WEBHOOK_URL", ""),

		// Application
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string. A full
// DATABASE_URL wins over the individual DB_* parts.
func (c *Config) DatabaseURL() string {
	if c.DBUrl != "" {
		return c.DBUrl
	}

	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// splitList splits a comma-separated list, trimming whitespace.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
