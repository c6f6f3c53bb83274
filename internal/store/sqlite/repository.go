// Package sqlite persists the stores in a local SQLite database via
// modernc.org/sqlite, with schema managed by golang-migrate.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"finboard/internal/core"
	"finboard/internal/store"
)

// Repository implements the store ports on a SQLite database.
type Repository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ store.TransactionStore = (*Repository)(nil)
	_ store.SettingsStore    = (*Repository)(nil)
	_ store.UserStore        = (*Repository)(nil)
	_ store.AlertRecorder    = (*Repository)(nil)
)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, queries: New(db)}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable, for readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := rowToTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *Repository) Add(ctx context.Context, input core.TransactionInput) (core.Transaction, error) {
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
	if err := r.queries.CreateTransaction(ctx, transactionToRow(tx)); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}

// Update replaces the matching row; a missing id is a silent no-op.
func (r *Repository) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if _, err := r.queries.UpdateTransaction(ctx, transactionToRow(tx)); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// Remove deletes the matching row; a missing id is a silent no-op.
func (r *Repository) Remove(ctx context.Context, id string) error {
	if err := r.queries.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context) (core.Settings, error) {
	row, err := r.queries.GetSettings(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	limits, err := r.queries.ListCategoryLimits(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("list category limits: %w", err)
	}

	s := core.Settings{
		TotalBudgetLimit: core.Money{Cents: row.TotalBudgetLimitCents},
		CategoryLimits:   make(map[string]core.Money, len(limits)),
		AlertsEnabled:    row.AlertsEnabled,
	}
	for category, cents := range limits {
		s.CategoryLimits[category] = core.Money{Cents: cents}
	}
	return s, nil
}

// Set replaces the whole settings object in one transaction.
func (r *Repository) Set(ctx context.Context, s core.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings update: %w", err)
	}
	defer dbTx.Rollback()

	q := r.queries.WithTx(dbTx)
	if err := q.UpdateSettings(ctx, SettingsRow{
		TotalBudgetLimitCents: s.TotalBudgetLimit.Cents,
		AlertsEnabled:         s.AlertsEnabled,
	}); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	limits := make(map[string]int64, len(s.CategoryLimits))
	for category, limit := range s.CategoryLimits {
		limits[category] = limit.Cents
	}
	if err := q.ReplaceCategoryLimits(ctx, limits); err != nil {
		return fmt.Errorf("replace category limits: %w", err)
	}

	return dbTx.Commit()
}

func (r *Repository) CreateUser(ctx context.Context, u store.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	err := r.queries.CreateUser(ctx, UserRow{
		ID:           u.ID,
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	row, err := r.queries.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.User{}, store.ErrUserNotFound
		}
		return store.User{}, fmt.Errorf("get user: %w", err)
	}
	return store.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}, nil
}

func (r *Repository) RecordAlert(ctx context.Context, e store.AlertEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if err := r.queries.InsertAlertEvent(ctx, e.ID, e.Category, e.Message, e.Severity, e.CreatedAt); err != nil {
		return fmt.Errorf("insert alert event: %w", err)
	}
	return nil
}

func transactionToRow(tx core.Transaction) TransactionRow {
	return TransactionRow{
		ID:          tx.ID,
		Description: tx.Description,
		AmountCents: tx.Amount.Cents,
		Type:        string(tx.Type),
		Category:    tx.Category,
		TxDate:      tx.Date.String(),
	}
}

func rowToTransaction(row TransactionRow) (core.Transaction, error) {
	date, err := core.ParseDate(row.TxDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", row.TxDate, err)
	}
	return core.Transaction{
		ID:          row.ID,
		Description: row.Description,
		Amount:      core.Money{Cents: row.AmountCents},
		Type:        core.TransactionType(row.Type),
		Category:    row.Category,
		Date:        date,
	}, nil
}
