package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Skotchmaster/todo_auth/internal/metrics"
	"github.com/Skotchmaster/todo_auth/internal/mykafka"
	"github.com/Skotchmaster/todo_auth/internal/transport"
	"github.com/Skotchmaster/todo_auth/pkg/hash"
	"github.com/Skotchmaster/todo_auth/pkg/tokens"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc    *AuthService
	store  *memStore
	codec  *tokens.Codec
	events *recordingPublisher
	m      *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	codec, err := tokens.NewCodec([]byte("test-jwt-secret"), "HS256")
	require.NoError(t, err)

	store := newMemStore()
	events := &recordingPublisher{}
	m := metrics.New(nil)

	svc, err := NewAuthService(store, newSpyHasher(), codec, 20*time.Minute, events, m)
	require.NoError(t, err)
	return &testEnv{svc: svc, store: store, codec: codec, events: events, m: m}
}

func aliceRequest() transport.RegisterRequest {
	return transport.RegisterRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Liddell",
		Password:  "pw123",
	}
}

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.svc.Register(context.Background(), aliceRequest())
	require.NoError(t, err)

	assert.NotZero(t, u.ID)
	assert.True(t, u.IsActive)
	assert.Equal(t, "user", u.Role)
	assert.NotEqual(t, "pw123", u.HashedPassword)
	assert.True(t, env.svc.Hasher.Verify("pw123", u.HashedPassword))

	stored, err := env.store.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email)

	require.Len(t, env.events.events, 1)
	ev := env.events.events[0].(mykafka.UserEvent)
	assert.Equal(t, mykafka.EventUserRegistered, ev.Type)
	assert.Equal(t, "alice", ev.Username)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.m.Registrations.WithLabelValues(metrics.OutcomeSuccess)))
}

func TestAuthService_Register_KeepsRole(t *testing.T) {
	env := newTestEnv(t)
	req := aliceRequest()
	req.Role = "admin"

	u, err := env.svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: "", password: "secret"},
		{name: "blank username", username: "   ", password: "secret"},
		{name: "empty password", username: "user", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := aliceRequest()
			req.Username, req.Password = tt.username, tt.password

			u, err := env.svc.Register(context.Background(), req)
			assert.Nil(t, u)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Empty(t, env.events.events)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Register(context.Background(), aliceRequest())
	require.NoError(t, err)

	_, err = env.svc.Register(context.Background(), aliceRequest())
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.m.Registrations.WithLabelValues(metrics.OutcomeConflict)))
}

func TestAuthService_Register_StoreError(t *testing.T) {
	env := newTestEnv(t)
	env.store.err = errors.New("disk full")

	_, err := env.svc.Register(context.Background(), aliceRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestAuthService_Register_PublishFailureIgnored(t *testing.T) {
	env := newTestEnv(t)
	env.events.err = errors.New("broker down")

	_, err := env.svc.Register(context.Background(), aliceRequest())
	require.NoError(t, err)
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.svc.Register(context.Background(), aliceRequest())
	require.NoError(t, err)

	res, err := env.svc.Login(context.Background(), "alice", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	assert.WithinDuration(t, time.Now().Add(20*time.Minute), res.ExpiresAt, 5*time.Second)

	claims, err := env.codec.Decode(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	require.NotNil(t, claims.UserID)
	assert.Equal(t, int64(u.ID), *claims.UserID)

	require.Len(t, env.events.events, 2)
	assert.Equal(t, mykafka.EventUserLoggedIn, env.events.events[1].(mykafka.UserEvent).Type)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.m.LoginAttempts.WithLabelValues(metrics.OutcomeSuccess)))
}

func TestAuthService_Login_Failures(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Register(context.Background(), aliceRequest())
	require.NoError(t, err)

	_, errWrong := env.svc.Login(context.Background(), "alice", "wrongpw")
	_, errUnknown := env.svc.Login(context.Background(), "bob", "x")

	assert.ErrorIs(t, errWrong, ErrVerificationFailed)
	assert.ErrorIs(t, errUnknown, ErrVerificationFailed)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.Equal(t, 2.0, testutil.ToFloat64(env.m.LoginAttempts.WithLabelValues(metrics.OutcomeFailed)))
}

func TestAuthService_Login_Inactive(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.svc.Register(context.Background(), aliceRequest())
	require.NoError(t, err)

	env.store.mu.Lock()
	stored := env.store.users[u.Username]
	stored.IsActive = false
	env.store.users[u.Username] = stored
	env.store.mu.Unlock()

	res, err := env.svc.Login(context.Background(), "alice", "pw123")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.m.LoginAttempts.WithLabelValues(metrics.OutcomeInactive)))
}

func TestAuthService_Login_Validation(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.svc.Login(context.Background(), "", "secret")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrValidation)

	res, err = env.svc.Login(context.Background(), "user", "")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewAuthService_Validation(t *testing.T) {
	codec, err := tokens.NewCodec([]byte("s"), "HS256")
	require.NoError(t, err)

	_, err = NewAuthService(newMemStore(), newSpyHasher(), nil, time.Minute, nil, nil)
	assert.Error(t, err)

	_, err = NewAuthService(newMemStore(), newSpyHasher(), codec, 0, nil, nil)
	assert.Error(t, err)

	svc, err := NewAuthService(newMemStore(), newSpyHasher(), codec, time.Minute, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, mykafka.NopPublisher{}, svc.Events)
}

func TestAuthService_Register_PasswordLength(t *testing.T) {
	env := newTestEnv(t)

	req := aliceRequest()
	req.Password = strings.Repeat("p", hash.MaxPasswordBytes+1)
	u, err := env.svc.Register(context.Background(), req)
	assert.Nil(t, u)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.m.Registrations.WithLabelValues(metrics.OutcomeInvalid)))

	req.Password = strings.Repeat("p", hash.MaxPasswordBytes)
	_, err = env.svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = env.svc.Login(context.Background(), "alice", req.Password)
	require.NoError(t, err)
}

func TestAuthService_Register_HasherRejectsLongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.svc.Hasher = tooLongHasher{env.svc.Hasher}

	_, err := env.svc.Register(context.Background(), aliceRequest())
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, hash.ErrPasswordTooLong)
}

func TestAuthService_Register_TrimsUsername(t *testing.T) {
	env := newTestEnv(t)

	req := aliceRequest()
	req.Username = "  alice "
	u, err := env.svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	req.Username = " alice"
	_, err = env.svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.svc.Login(context.Background(), " alice ", "pw123")
	require.NoError(t, err)
}
