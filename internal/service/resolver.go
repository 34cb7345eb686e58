package service

import (
	"fmt"

	"github.com/Skotchmaster/todo_auth/internal/metrics"
	"github.com/Skotchmaster/todo_auth/pkg/tokens"
)

type TokenDecoder interface {
	Decode(token string) (*tokens.Claims, error)
}

// Resolver turns a bearer token into the identity it asserts.
type Resolver struct {
	tokens  TokenDecoder
	metrics *metrics.Metrics
}

func NewResolver(d TokenDecoder, m *metrics.Metrics) *Resolver {
	return &Resolver{tokens: d, metrics: m}
}

func (r *Resolver) Resolve(token string) (*tokens.Identity, error) {
	if token == "" {
		r.metrics.TokenRejected()
		return nil, fmt.Errorf("%w: empty token", ErrUnauthorized)
	}

	claims, err := r.tokens.Decode(token)
	if err != nil {
		r.metrics.TokenRejected()
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if claims.Subject == "" || claims.UserID == nil {
		r.metrics.TokenRejected()
		return nil, fmt.Errorf("%w: token lacks subject or id", ErrUnauthorized)
	}

	return &tokens.Identity{Username: claims.Subject, ID: *claims.UserID}, nil
}
