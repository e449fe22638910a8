package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24, cfg.Auth.JWTExpireHours)
	assert.Equal(t, "campus-sso", cfg.Auth.SSOIssuer)
	assert.NotEmpty(t, cfg.Database.DSN())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("JWT_EXPIRE_HOURS", "2")
	t.Setenv("DATABASE_URL", "postgres://db.internal:5432/hub?sslmode=require")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 2, cfg.Auth.JWTExpireHours)
	assert.Equal(t, "postgres://db.internal:5432/hub?sslmode=require", cfg.Database.DSN())
}

func TestSSOSecretFallsBackToJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "shared")
	t.Setenv("SSO_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "shared", cfg.Auth.SSOSecret)
}

func TestSSOSecretIndependentWhenSet(t *testing.T) {
	t.Setenv("JWT_SECRET", "app")
	t.Setenv("SSO_SECRET", "sso")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sso", cfg.Auth.SSOSecret)
}

func TestDSNFromComponents(t *testing.T) {
	c := DatabaseConfig{
		Host: "localhost", Port: "5432", User: "u", Password: "p",
		DBName: "hub", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@localhost:5432/hub?sslmode=disable", c.DSN())
}
