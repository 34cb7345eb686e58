package config

import (
	"errors"
	"fmt"

	"github.com/Skotchmaster/todo_auth/pkg/hash"
	"github.com/Skotchmaster/todo_auth/pkg/tokens"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingEnv   = errors.New("missing required env")
	ErrInvalidValue = errors.New("invalid config value")
)

func mustNonEmpty(value, envName string) error {
	if value == "" {
		return fmt.Errorf("%w %s", ErrMissingEnv, envName)
	}
	return nil
}

// Validate checks the values the auth core cannot run without.
func (c Config) Validate() error {
	if err := mustNonEmpty(c.DatabaseURL, "DATABASE_URL"); err != nil {
		return err
	}
	if err := mustNonEmpty(string(c.JWTSecret), "JWT_SECRET"); err != nil {
		return err
	}
	if !tokens.SupportedAlgorithm(c.JWTAlgorithm) {
		return fmt.Errorf("%w: JWT_ALGORITHM=%q", ErrInvalidValue, c.JWTAlgorithm)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("%w: JWT_ACCESS_TTL must be positive", ErrInvalidValue)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("%w: BCRYPT_COST=%d: %w", ErrInvalidValue, c.BcryptCost, hash.ErrInvalidCost)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("%w: SERVER_PORT=%d", ErrInvalidValue, c.ServerPort)
	}
	return nil
}
