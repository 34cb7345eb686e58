package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/todo_auth/internal/metrics"
	"github.com/Skotchmaster/todo_auth/internal/models"
	"github.com/Skotchmaster/todo_auth/internal/repo"
)

// dummyPassword is hashed once per Authenticator so lookups of unknown users
// still pay for a full bcrypt compare.
const dummyPassword = "dummy-password-for-timing"

type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

type Authenticator struct {
	users   UserLookup
	hasher  PasswordHasher
	metrics *metrics.Metrics
	dummy   string
}

func NewAuthenticator(users UserLookup, hasher PasswordHasher, m *metrics.Metrics) (*Authenticator, error) {
	if users == nil || hasher == nil {
		return nil, errors.New("authenticator: users and hasher are required")
	}
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("authenticator: dummy digest: %w", err)
	}
	return &Authenticator{users: users, hasher: hasher, metrics: m, dummy: dummy}, nil
}

// Authenticate returns the user owning username when password matches.
// Unknown users, wrong passwords and inactive accounts all yield an error
// matching ErrVerificationFailed. Store failures are returned as is.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			a.verify(password, a.dummy)
			return nil, ErrVerificationFailed
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !a.verify(password, user.HashedPassword) {
		return nil, ErrVerificationFailed
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, ErrAccountInactive)
	}
	return user, nil
}

func (a *Authenticator) verify(password, digest string) bool {
	start := time.Now()
	ok := a.hasher.Verify(password, digest)
	a.metrics.ObserveHash(time.Since(start).Seconds())
	return ok
}
