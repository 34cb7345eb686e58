package service

import (
	"context"
	"errors"
	"sync"

	"github.com/Skotchmaster/todo_auth/internal/models"
	"github.com/Skotchmaster/todo_auth/internal/repo"
	"github.com/Skotchmaster/todo_auth/pkg/hash"
	"golang.org/x/crypto/bcrypt"
)

type memStore struct {
	mu     sync.Mutex
	users  map[string]models.User
	nextID uint
	err    error
}

func newMemStore() *memStore {
	return &memStore{users: map[string]models.User{}}
}

func (s *memStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (s *memStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.users[u.Username]; ok {
		return repo.ErrUserAlreadyExist
	}
	s.nextID++
	u.ID = s.nextID
	s.users[u.Username] = *u
	return nil
}

// spyHasher counts Verify calls on top of a real low-cost bcrypt hasher.
type spyHasher struct {
	*hash.Hasher
	mu       sync.Mutex
	verified []string
}

func newSpyHasher() *spyHasher {
	h, err := hash.NewHasher(bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return &spyHasher{Hasher: h}
}

func (h *spyHasher) Verify(password, digest string) bool {
	h.mu.Lock()
	h.verified = append(h.verified, digest)
	h.mu.Unlock()
	return h.Hasher.Verify(password, digest)
}

func (h *spyHasher) verifyCalls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.verified...)
}

type failingHasher struct{ *hash.Hasher }

func (failingHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
	keys   []string
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type tooLongHasher struct{ PasswordHasher }

func (tooLongHasher) Hash(string) (string, error) { return "", hash.ErrPasswordTooLong }
