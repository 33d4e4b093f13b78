package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultWeatherAPIBaseURL is the weatherapi.com v1 endpoint root
const DefaultWeatherAPIBaseURL = "https://api.weatherapi.com/v1"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Weather provider
	WeatherAPIKey     string        // passed explicitly to the provider client, never logged
	WeatherAPIBaseURL string
	WeatherAPITimeout time.Duration // deadline for a single provider request

	// Session store configuration
	SessionStoreType string        // "memory", "redis", or "mysql"
	SessionTTL       time.Duration // idle sessions are dropped after this long

	// MySQL configuration
	MySQLDSN string

	// Redis configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Logging
	LogLevel  string
	LogPretty bool
}

// Load reads configuration from environment variables
// with sensible defaults
func Load() *Config {
	// Load .env file if it exists (for local development)
	// In production/Docker, environment variables are set directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return FromEnv()
}

// FromEnv builds a Config from the current process environment only
func FromEnv() *Config {
	return &Config{
		Port: getEnv("PORT", "3000"),

		// An empty key is not rejected here: the provider answers with an auth error
		// which the lookup surfaces like any other provider failure.
		WeatherAPIKey:     os.Getenv("WEATHER_API_KEY"),
		WeatherAPIBaseURL: getEnv("WEATHER_API_BASE_URL", DefaultWeatherAPIBaseURL),
		WeatherAPITimeout: time.Duration(getEnvAsInt("WEATHER_API_TIMEOUT", 10)) * time.Second,

		SessionStoreType: getEnv("SESSION_STORE_TYPE", "memory"),
		SessionTTL:       time.Duration(getEnvAsInt("SESSION_TTL", 1800)) * time.Second,

		MySQLDSN: getEnv("MYSQL_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set, invalid, or not positive
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 0 {
		return defaultValue
	}

	return value
}

// getEnvAsBool reads an environment variable as a boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
