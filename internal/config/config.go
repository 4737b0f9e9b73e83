// Package config centralises configuration parsing for the fitness tracker.
package config

import "os"

// Config captures runtime configuration values for the API server.
type Config struct {
	HTTPAddress string
	PostgresURL string
	JWTSecret   string
	JWTIssuer   string
}

// Load reads environment variables into Config, applying sensible defaults
// for local dev. An empty POSTGRES_URL keeps the server on the in-memory
// store.
func Load() Config {
	return Config{
		HTTPAddress: getEnv("HTTP_ADDRESS", ":8080"),
		PostgresURL: getEnv("POSTGRES_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:   getEnv("JWT_ISSUER", "fitness.identity"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
