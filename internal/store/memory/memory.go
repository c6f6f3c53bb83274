// Package memory provides in-memory store adapters, used as the default
// backend and by tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"finboard/internal/core"
	"finboard/internal/store"
)

// Store keeps transactions, settings, users and alert events in memory
// behind one mutex. All reads return copies so callers can never mutate
// shared state through a returned slice or map.
type Store struct {
	mu       sync.RWMutex
	txs      []core.Transaction
	settings core.Settings
	users    map[string]store.User
	alerts   []store.AlertEvent
}

func New() *Store {
	return &Store{
		settings: core.DefaultSettings(),
		users:    make(map[string]store.User),
	}
}

func (s *Store) List(ctx context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

func (s *Store) Add(ctx context.Context, input core.TransactionInput) (core.Transaction, error) {
	if err := input.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		ID:          uuid.NewString(),
		Description: input.Description,
		Amount:      input.Amount,
		Type:        input.Type,
		Category:    input.Category,
		Date:        input.Date,
	}

	s.mu.Lock()
	s.txs = append(s.txs, tx)
	s.mu.Unlock()
	return tx, nil
}

// Update replaces the record with a matching id and is a no-op when the
// id is absent.
func (s *Store) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == tx.ID {
			s.txs[i] = tx
			return nil
		}
	}
	return nil
}

// Remove deletes the record with a matching id and is a no-op when the
// id is absent.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) Get(ctx context.Context) (core.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone(), nil
}

func (s *Store) Set(ctx context.Context, settings core.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.settings = settings.Clone()
	s.mu.Unlock()
	return nil
}

func (s *Store) CreateUser(ctx context.Context, u store.User) error {
	key := strings.ToLower(u.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[key]; ok {
		return store.ErrUserExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[key] = u
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return store.User{}, store.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) RecordAlert(ctx context.Context, e store.AlertEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.alerts = append(s.alerts, e)
	s.mu.Unlock()
	return nil
}

// Alerts returns recorded alert events, oldest first.
func (s *Store) Alerts(ctx context.Context) ([]store.AlertEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.AlertEvent, len(s.alerts))
	copy(out, s.alerts)
	return out, nil
}
