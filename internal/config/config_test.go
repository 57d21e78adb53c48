package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_TTL_MINUTES", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "./database.json", cfg.DatabasePath)
	require.Equal(t, 60*time.Minute, cfg.JWTTTL)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_PATH", "/tmp/registry.json")
	t.Setenv("JWT_TTL_MINUTES", "15")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, "/tmp/registry.json", cfg.DatabasePath)
	require.Equal(t, 15*time.Minute, cfg.JWTTTL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_InvalidTTLFallsBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_TTL_MINUTES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 60*time.Minute, cfg.JWTTTL)
}
