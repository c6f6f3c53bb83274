package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Daily   TimeFrame = "daily"
	Weekly  TimeFrame = "weekly"
	Monthly TimeFrame = "monthly"
	Yearly  TimeFrame = "yearly"
)

type (
	TransactionType string

	// TimeFrame selects the bucketing granularity for trend and budget
	// reports.
	TimeFrame string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single income or expense record. Amount is always
	// a non-negative magnitude; direction is carried by Type.
	Transaction struct {
		ID          string
		Description string
		Amount      Money
		Type        TransactionType
		Category    string
		Date        Date
	}

	// TransactionInput is a Transaction before the store has assigned an ID.
	TransactionInput struct {
		Description string
		Amount      Money
		Type        TransactionType
		Category    string
		Date        Date
	}

	// Settings holds the budget configuration. CategoryLimits keys are a
	// subset of the expense category enumeration.
	Settings struct {
		TotalBudgetLimit Money
		CategoryLimits   map[string]Money
		AlertsEnabled    bool
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidType      = errors.New("transaction type must be income or expense")
	ErrInvalidTimeFrame = errors.New("invalid time frame")
	ErrZeroDate         = errors.New("date cannot be zero")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTimeFrame validates a user-supplied time frame string.
func ParseTimeFrame(s string) (TimeFrame, error) {
	switch TimeFrame(strings.ToLower(strings.TrimSpace(s))) {
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	default:
		return "", ErrInvalidTimeFrame
	}
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// String renders the calendar date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	return validateFields(t.Description, t.Amount, t.Type, t.Category, t.Date)
}

func (in TransactionInput) Validate() error {
	return validateFields(in.Description, in.Amount, in.Type, in.Category, in.Date)
}

func validateFields(desc string, amount Money, typ TransactionType, category string, date Date) error {
	if len(strings.TrimSpace(desc)) == 0 {
		return ErrEmptyDescription
	}
	if len(desc) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	if !typ.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(category) == "" {
		return ErrEmptyCategory
	}
	return date.Validate()
}

func (s Settings) Validate() error {
	if err := s.TotalBudgetLimit.Validate(); err != nil {
		return err
	}
	for _, limit := range s.CategoryLimits {
		if err := limit.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CategoryLimitTotal sums all configured per-category limits.
func (s Settings) CategoryLimitTotal() Money {
	var total int64
	for _, limit := range s.CategoryLimits {
		total += limit.Cents
	}
	return Money{Cents: total}
}

// DefaultSettings returns the configuration a fresh account starts
// with: no limits configured and alerts enabled.
func DefaultSettings() Settings {
	return Settings{
		CategoryLimits: map[string]Money{},
		AlertsEnabled:  true,
	}
}

// Clone returns a deep copy so callers can hand settings out without
// sharing the limits map.
func (s Settings) Clone() Settings {
	limits := make(map[string]Money, len(s.CategoryLimits))
	for k, v := range s.CategoryLimits {
		limits[k] = v
	}
	return Settings{
		TotalBudgetLimit: s.TotalBudgetLimit,
		CategoryLimits:   limits,
		AlertsEnabled:    s.AlertsEnabled,
	}
}
