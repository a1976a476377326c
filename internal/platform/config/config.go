// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.
type Config struct {
	Port string // HTTP port to listen on

	DBDriver string // "mysql" or "postgres"
	DBUser   string
	DBPass   string
	DBHost   string
	DBPort   string
	DBName   string

	RedisHost string
	RedisPort string
	RedisPass string

	JWTSecret       string        // symmetric signing key for both tokens
	JWTIssuer       string        // iss claim of access tokens
	AccessTokenTTL  time.Duration // access token lifetime (minutes)
	RefreshTokenTTL time.Duration // refresh token lifetime (hours)

	LoginRateLimit  int           // allowed /auth requests per window per client
	LoginRateWindow time.Duration // rate limit window
}

// Load reads configuration from environment variables.
// Missing required variables cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Port: getenv("PORT", "8080"),

		DBDriver: getenv("DB_DRIVER", "mysql"),
		DBUser:   os.Getenv("DB_USER"),
		DBPass:   os.Getenv("DB_PASSWORD"),
		DBHost:   os.Getenv("DB_HOST"),
		DBPort:   os.Getenv("DB_PORT"),
		DBName:   os.Getenv("DB_NAME"),

		RedisHost: os.Getenv("REDIS_HOST"),
		RedisPort: os.Getenv("REDIS_PORT"),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:       must("JWT_SECRET"),
		JWTIssuer:       getenv("JWT_ISSUER", "users_backend"),
		AccessTokenTTL:  time.Duration(mustInt("ACCESS_TOKEN_TTL_MIN", 15)) * time.Minute,
		RefreshTokenTTL: time.Duration(mustInt("REFRESH_TOKEN_TTL_HOURS", 24)) * time.Hour,

		LoginRateLimit:  mustInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: time.Duration(mustInt("LOGIN_RATE_WINDOW_SEC", 60)) * time.Second,
	}
}

// getenv returns the environment variable value or the fallback when unset.
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// must retrieves the value of a required environment variable.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt reads an integer variable, falling back when unset and failing
// fatally when unparsable.
func mustInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid integer env var %s=%q: %v", key, s, err)
	}
	return n
}
