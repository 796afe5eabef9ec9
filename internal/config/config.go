package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Site structure and storefront presentation
	SiteFile           string
	ProductsPageURL    string
	CurrencySuffix     string
	DefaultCountryCode string
	Timezone           string

	// Simulated latencies
	ProcessingDelay      time.Duration
	PaymentFeedbackDelay time.Duration

	SessionTTL time.Duration

	// Flood guard (disabled when RedisAddr is empty)
	RedisAddr        string
	RedisPassword    string
	RedisTLS         bool
	FloodMaxAttempts int
	FloodWindow      time.Duration

	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SiteFile:           getEnv("SITE_FILE", "site.yaml"),
		ProductsPageURL:    getEnv("PRODUCTS_PAGE_URL", "prods.html"),
		CurrencySuffix:     getEnv("CURRENCY_SUFFIX", "€"),
		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "+221"),
		Timezone:           getEnv("TIMEZONE", "UTC"),

		ProcessingDelay:      getEnvAsDuration("PROCESSING_DELAY", 900*time.Millisecond),
		PaymentFeedbackDelay: getEnvAsDuration("PAYMENT_FEEDBACK_DELAY", 240*time.Millisecond),

		SessionTTL: getEnvAsDuration("SESSION_TTL", 30*time.Minute),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisTLS:         getEnvAsBool("REDIS_TLS", false),
		FloodMaxAttempts: getEnvAsInt("FLOOD_MAX_ATTEMPTS", 10),
		FloodWindow:      getEnvAsDuration("FLOOD_WINDOW", 10*time.Minute),

		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 40),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
	}
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
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

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
