package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars. It is constructed
// once at startup and treated as immutable for the process lifetime.
type Config struct {
	Port         string
	DatabasePath string
	DatabaseURL  string
	JWTSecret    string
	JWTIssuer    string
	JWTTTL       time.Duration
	CORSOrigins  []string
}

// Load reads configuration from the environment and performs minimal
// validation. DATABASE_URL selects the Postgres backend; otherwise the
// registry lives in the JSON document at DATABASE_PATH.
func Load() (Config, error) {
	cfg := Config{
		Port:         fallback(os.Getenv("PORT"), "8080"),
		DatabasePath: fallback(os.Getenv("DATABASE_PATH"), "./database.json"),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:    fallback(os.Getenv("JWT_ISSUER"), "user-registry"),
		CORSOrigins:  parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	minutes := fallback(os.Getenv("JWT_TTL_MINUTES"), "60")
	if ttlMinutes, err := strconv.Atoi(minutes); err == nil && ttlMinutes > 0 {
		cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 60 * time.Minute
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
