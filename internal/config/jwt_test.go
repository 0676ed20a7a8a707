package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig(t *testing.T) {
	t.Setenv("PIPELINE_JWT_SECRET", "test-secret")
	t.Setenv("PIPELINE_JWT_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-secret", cfg.Secret)
	assert.Equal(t, 12, cfg.ExpirationHours)
}

func TestNewJWTConfig_RequiresSecret(t *testing.T) {
	t.Setenv("PIPELINE_JWT_SECRET", "")

	_, err := NewJWTConfig()
	assert.Error(t, err)
}

func TestNewJWTConfig_ExpirationValidation(t *testing.T) {
	t.Setenv("PIPELINE_JWT_SECRET", "test-secret")

	t.Setenv("PIPELINE_JWT_EXPIRATION_HOURS", "0")
	_, err := NewJWTConfig()
	assert.Error(t, err)

	t.Setenv("PIPELINE_JWT_EXPIRATION_HOURS", "not-a-number")
	_, err = NewJWTConfig()
	assert.Error(t, err)

	t.Setenv("PIPELINE_JWT_EXPIRATION_HOURS", "24")
	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.ExpirationHours)
}
