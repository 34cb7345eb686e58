package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Skotchmaster/todo_auth/internal/metrics"
	"github.com/Skotchmaster/todo_auth/internal/models"
	"github.com/Skotchmaster/todo_auth/internal/mykafka"
	"github.com/Skotchmaster/todo_auth/internal/repo"
	"github.com/Skotchmaster/todo_auth/internal/transport"
	"github.com/Skotchmaster/todo_auth/pkg/hash"
	"github.com/Skotchmaster/todo_auth/pkg/logging"
)

const defaultRole = "user"

type UserStore interface {
	UserLookup
	Create(ctx context.Context, u *models.User) error
}

type TokenIssuer interface {
	Encode(subject string, userID int64, ttl time.Duration) (string, error)
}

type AuthService struct {
	Users     UserStore
	Hasher    PasswordHasher
	Auth      *Authenticator
	Tokens    TokenIssuer
	AccessTTL time.Duration
	Events    mykafka.Publisher
	Metrics   *metrics.Metrics
	now       func() time.Time
}

func NewAuthService(users UserStore, hasher PasswordHasher, issuer TokenIssuer, accessTTL time.Duration, events mykafka.Publisher, m *metrics.Metrics) (*AuthService, error) {
	if issuer == nil {
		return nil, errors.New("auth service: token issuer is required")
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("auth service: access ttl must be positive, got %s", accessTTL)
	}
	authn, err := NewAuthenticator(users, hasher, m)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = mykafka.NopPublisher{}
	}
	return &AuthService{
		Users:     users,
		Hasher:    hasher,
		Auth:      authn,
		Tokens:    issuer,
		AccessTTL: accessTTL,
		Events:    events,
		Metrics:   m,
		now:       time.Now,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", req.Username)

	if req.Username == "" || req.Password == "" {
		s.Metrics.Register(metrics.OutcomeInvalid)
		l.Warn("register_error", "status", 400, "reason", "username and password are required")
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if len(req.Password) > hash.MaxPasswordBytes {
		s.Metrics.Register(metrics.OutcomeInvalid)
		l.Warn("register_error", "status", 400, "reason", "password too long")
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, hash.MaxPasswordBytes)
	}

	start := time.Now()
	digest, err := s.Hasher.Hash(req.Password)
	s.Metrics.ObserveHash(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, hash.ErrPasswordTooLong) {
			s.Metrics.Register(metrics.OutcomeInvalid)
			l.Warn("register_error", "status", 400, "reason", "password too long")
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		s.Metrics.Register(metrics.OutcomeError)
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = defaultRole
	}
	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		HashedPassword: digest,
		Role:           role,
		IsActive:       true,
	}

	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			s.Metrics.Register(metrics.OutcomeConflict)
			l.Warn("register_error", "status", 409, "reason", "user already exist")
			return nil, fmt.Errorf("%w: %s", ErrConflict, req.Username)
		}
		s.Metrics.Register(metrics.OutcomeError)
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.Metrics.Register(metrics.OutcomeSuccess)
	s.publish(ctx, l, mykafka.NewUserEvent(mykafka.EventUserRegistered, user.ID, user.Username))
	l.Info("register_successful", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*transport.LoginResult, error) {
	username = strings.TrimSpace(username)
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		s.Metrics.Login(metrics.OutcomeInvalid)
		l.Warn("login_failed", "status", 400, "reason", "username and password are required")
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Auth.Authenticate(ctx, username, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountInactive):
			s.Metrics.Login(metrics.OutcomeInactive)
			l.Warn("login_failed", "status", 401, "reason", "account is inactive")
		case errors.Is(err, ErrVerificationFailed):
			s.Metrics.Login(metrics.OutcomeFailed)
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		default:
			s.Metrics.Login(metrics.OutcomeError)
			l.Error("login_failed", "status", 500, "error", err)
		}
		return nil, err
	}

	issuedAt := s.now()
	token, err := s.Tokens.Encode(user.Username, int64(user.ID), s.AccessTTL)
	if err != nil {
		s.Metrics.Login(metrics.OutcomeError)
		l.Error("login_failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, fmt.Errorf("encode token: %w", err)
	}

	s.Metrics.Login(metrics.OutcomeSuccess)
	s.publish(ctx, l, mykafka.NewUserEvent(mykafka.EventUserLoggedIn, user.ID, user.Username))
	l.Info("login_successful", "user_id", user.ID)

	return &transport.LoginResult{
		AccessToken: token,
		ExpiresAt:   issuedAt.Add(s.AccessTTL).UTC(),
	}, nil
}

// publish never fails the caller; events are best effort.
func (s *AuthService) publish(ctx context.Context, l *slog.Logger, ev mykafka.UserEvent) {
	if err := s.Events.PublishEvent(ctx, fmt.Sprint(ev.UserID), ev); err != nil {
		l.Warn("event_publish_failed", "event", ev.Type, "error", err)
	}
}
