// Package config - token.go provides hashing for the status-API access token.
package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// TokenConfig holds configuration for API-token hashing and verification.
// The plaintext token is never stored; project.json carries only the hash.
type TokenConfig struct {
	BcryptCost int
}

// NewTokenConfig creates a token configuration from environment variables.
// It reads PIPELINE_BCRYPT_COST (default: 12).
func NewTokenConfig() (*TokenConfig, error) {
	costStr := os.Getenv("PIPELINE_BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PIPELINE_BCRYPT_COST: %v", err)
	}

	cfg := &TokenConfig{BcryptCost: cost}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *TokenConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashToken hashes an access token using bcrypt.
func (c *TokenConfig) HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}

// VerifyToken verifies an access token against a stored hash.
func (c *TokenConfig) VerifyToken(token, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(token)) == nil
}
