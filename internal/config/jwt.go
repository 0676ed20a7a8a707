// Package config - jwt.go provides JWT configuration for the status API.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads PIPELINE_JWT_SECRET (required) and PIPELINE_JWT_EXPIRATION_HOURS
// (default: 12).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("PIPELINE_JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("PIPELINE_JWT_SECRET is required but not set")
	}

	expirationStr := os.Getenv("PIPELINE_JWT_EXPIRATION_HOURS")
	if expirationStr == "" {
		expirationStr = "12" // default
	}

	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PIPELINE_JWT_EXPIRATION_HOURS: %v", err)
	}

	cfg := &JWTConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("PIPELINE_JWT_SECRET cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("PIPELINE_JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
