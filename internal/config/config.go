// Package config loads application settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application settings.
type Config struct {
	Addr         string
	DatabaseURL  string
	JWTSecret    string
	TokenTTL     time.Duration
	OTLPEndpoint string
}

// Load reads the .env file if present, then the environment. JWT_SECRET is
// required; an empty DATABASE_URL selects the in-memory backend.
func Load() (*Config, error) {
	// Missing .env is fine; in containers the variables come from the
	// environment directly.
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	ttl := 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", raw, err)
		}
		ttl = parsed
	}

	return &Config{
		Addr:         ":" + withDefault(os.Getenv("PORT"), "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    secret,
		TokenTTL:     ttl,
		OTLPEndpoint: os.Getenv("OTLP_ENDPOINT"),
	}, nil
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
