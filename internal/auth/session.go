package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/takes-and-tastes/internal/client"
	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/fjod/takes-and-tastes/internal/storage"
	log "github.com/sirupsen/logrus"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Authenticator is the part of the API client a session talks to.
type Authenticator interface {
	Register(ctx context.Context, reg client.Registration) (*client.AuthResult, error)
	Login(ctx context.Context, email, password string) (*client.AuthResult, error)
	UpdateProfile(ctx context.Context, update client.ProfileUpdate) (*domain.User, error)
}

// Session keeps the signed-in user's token and profile in local storage so they
// survive restarts. It also serves as the API client's token source.
type Session struct {
	kv storage.KV

	mu    sync.RWMutex
	token string
	user  *domain.User
}

func NewSession(kv storage.KV) *Session {
	return &Session{kv: kv}
}

// Restore loads a previous login. A token without user data, or user data that
// does not parse, counts as logged out.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.kv.Get(ctx, storage.KeyUserToken)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	raw, err := s.kv.Get(ctx, storage.KeyUserData)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read user: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		log.WithError(err).Warn("stored user data is unreadable, ignoring login")
		return nil
	}

	s.mu.Lock()
	s.token = string(token)
	s.user = &user
	s.mu.Unlock()
	log.WithField("email", user.Email).Debug("session restored")
	return nil
}

func (s *Session) Login(ctx context.Context, api Authenticator, email, password string) (*domain.User, error) {
	res, err := api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, res.Token, res.User); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (s *Session) Register(ctx context.Context, api Authenticator, reg client.Registration) (*domain.User, error) {
	res, err := api.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, res.Token, res.User); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (s *Session) UpdateProfile(ctx context.Context, api Authenticator, update client.ProfileUpdate) (*domain.User, error) {
	if _, ok := s.User(); !ok {
		return nil, ErrNotLoggedIn
	}
	user, err := api.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyUserData, raw); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

func (s *Session) Logout(ctx context.Context) error {
	return s.Clear(ctx)
}

// Clear forgets the token and user both in memory and in storage.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, storage.KeyUserToken, storage.KeyUserData); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}

func (s *Session) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *Session) store(ctx context.Context, token string, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyUserToken, []byte(token)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyUserData, raw); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	return nil
}
