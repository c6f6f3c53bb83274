package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// DBTX lets queries run against either the pool or a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type TransactionRow struct {
	ID          string
	Description string
	AmountCents int64
	Type        string
	Category    string
	TxDate      string
}

const listTransactions = `
SELECT id, description, amount_cents, type, category, tx_date
FROM transactions
ORDER BY rowid
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRow
	for rows.Next() {
		var r TransactionRow
		if err := rows.Scan(&r.ID, &r.Description, &r.AmountCents, &r.Type, &r.Category, &r.TxDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const createTransaction = `
INSERT INTO transactions (id, description, amount_cents, type, category, tx_date)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateTransaction(ctx context.Context, r TransactionRow) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		r.ID, r.Description, r.AmountCents, r.Type, r.Category, r.TxDate)
	return err
}

const updateTransaction = `
UPDATE transactions
SET description = ?, amount_cents = ?, type = ?, category = ?, tx_date = ?
WHERE id = ?
`

func (q *Queries) UpdateTransaction(ctx context.Context, r TransactionRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		r.Description, r.AmountCents, r.Type, r.Category, r.TxDate, r.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteTransaction, id)
	return err
}

type SettingsRow struct {
	TotalBudgetLimitCents int64
	AlertsEnabled         bool
}

const getSettings = `
SELECT total_budget_limit_cents, alerts_enabled FROM settings WHERE id = 1
`

func (q *Queries) GetSettings(ctx context.Context) (SettingsRow, error) {
	var r SettingsRow
	err := q.db.QueryRowContext(ctx, getSettings).Scan(&r.TotalBudgetLimitCents, &r.AlertsEnabled)
	return r, err
}

const updateSettings = `
UPDATE settings
SET total_budget_limit_cents = ?, alerts_enabled = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = 1
`

func (q *Queries) UpdateSettings(ctx context.Context, r SettingsRow) error {
	_, err := q.db.ExecContext(ctx, updateSettings, r.TotalBudgetLimitCents, r.AlertsEnabled)
	return err
}

const listCategoryLimits = `
SELECT category, limit_cents FROM category_limits
`

func (q *Queries) ListCategoryLimits(ctx context.Context) (map[string]int64, error) {
	rows, err := q.db.QueryContext(ctx, listCategoryLimits)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var category string
		var cents int64
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, err
		}
		out[category] = cents
	}
	return out, rows.Err()
}

const deleteCategoryLimits = `
DELETE FROM category_limits
`

const insertCategoryLimit = `
INSERT INTO category_limits (category, limit_cents) VALUES (?, ?)
`

func (q *Queries) ReplaceCategoryLimits(ctx context.Context, limits map[string]int64) error {
	if _, err := q.db.ExecContext(ctx, deleteCategoryLimits); err != nil {
		return err
	}
	for category, cents := range limits {
		if _, err := q.db.ExecContext(ctx, insertCategoryLimit, category, cents); err != nil {
			return err
		}
	}
	return nil
}

type UserRow struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

const createUser = `
INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)
`

func (q *Queries) CreateUser(ctx context.Context, r UserRow) error {
	_, err := q.db.ExecContext(ctx, createUser, r.ID, r.Email, r.PasswordHash, r.CreatedAt)
	return err
}

const getUserByEmail = `
SELECT id, email, password_hash, created_at FROM users WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (UserRow, error) {
	var r UserRow
	err := q.db.QueryRowContext(ctx, getUserByEmail, email).
		Scan(&r.ID, &r.Email, &r.PasswordHash, &r.CreatedAt)
	return r, err
}

const insertAlertEvent = `
INSERT INTO alert_events (id, category, message, severity, created_at)
VALUES (?, ?, ?, ?, ?)
`

func (q *Queries) InsertAlertEvent(ctx context.Context, id, category, message, severity string, createdAt time.Time) error {
	_, err := q.db.ExecContext(ctx, insertAlertEvent, id, category, message, severity, createdAt)
	return err
}
