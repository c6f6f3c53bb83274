// Package store defines the persistence ports the services depend on.
// Adapters live in the memory and sqlite subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"finboard/internal/core"
)

var (
	ErrUserExists   = errors.New("store: user already exists")
	ErrUserNotFound = errors.New("store: user not found")
)

// User is an account row. PasswordHash is a bcrypt hash, never the
// plain password.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// AlertEvent is a persisted record of one alert firing, written by the
// worker for audit purposes.
type AlertEvent struct {
	ID        string
	Category  string
	Message   string
	Severity  string
	CreatedAt time.Time
}

// TransactionStore holds the ordered transaction collection. List
// returns insertion order, not date order. Update and Remove are silent
// no-ops when the id does not exist; that permissive policy is
// deliberate and callers must not rely on an error to detect a miss.
type TransactionStore interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Add(ctx context.Context, input core.TransactionInput) (core.Transaction, error)
	Update(ctx context.Context, tx core.Transaction) error
	Remove(ctx context.Context, id string) error
}

// SettingsStore holds the single budget configuration. Set replaces the
// whole object atomically.
type SettingsStore interface {
	Get(ctx context.Context) (core.Settings, error)
	Set(ctx context.Context, s core.Settings) error
}

// UserStore holds accounts for auth.
type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// AlertRecorder appends alert events to an audit log.
type AlertRecorder interface {
	RecordAlert(ctx context.Context, e AlertEvent) error
}
