// Package auth handles account registration, login and bearer-token
// sessions. Passwords are stored as bcrypt hashes; sessions live in an
// in-process TTL cache and die with the server.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"finboard/internal/cache"
	"finboard/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrInvalidEmail       = errors.New("auth: invalid email address")
	ErrWeakPassword       = errors.New("auth: password must be at least 8 characters")
)

// Session is the cached state behind one bearer token.
type Session struct {
	UserID    string
	Email     string
	CreatedAt time.Time
}

type Service struct {
	users    store.UserStore
	sessions *cache.Cache[Session]
}

func NewService(users store.UserStore, maxSessions int, ttl time.Duration) *Service {
	return &Service{
		users:    users,
		sessions: cache.New[Session](maxSessions, ttl),
	}
}

// Register creates an account. The email is normalized to lower case.
func (s *Service) Register(ctx context.Context, email, password string) (store.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return store.User{}, ErrInvalidEmail
	}
	if len(password) < 8 {
		return store.User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := store.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return store.User{}, err
	}
	return s.users.GetUserByEmail(ctx, email)
}

// Login verifies credentials and returns a fresh session token. A
// missing user and a wrong password are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}
	s.sessions.Set(token, Session{
		UserID:    u.ID,
		Email:     u.Email,
		CreatedAt: time.Now().UTC(),
	})
	return token, nil
}

// SessionFor resolves a token to its session, if still valid.
func (s *Service) SessionFor(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	return s.sessions.Get(token)
}

// Logout invalidates a token. Unknown tokens are ignored.
func (s *Service) Logout(token string) {
	s.sessions.Delete(token)
}

// StartSessionReaper starts the background cleanup of expired sessions.
func (s *Service) StartSessionReaper(interval time.Duration) {
	s.sessions.StartJanitor(interval)
}

func (s *Service) StopSessionReaper() {
	s.sessions.StopJanitor()
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
