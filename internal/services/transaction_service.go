// Package services orchestrates the stores, the classifier, the report
// engine and the message broker behind the HTTP handlers.
package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"finboard/internal/alert"
	"finboard/internal/amqp"
	"finboard/internal/classify"
	"finboard/internal/core"
	"finboard/internal/store"
)

// AlertPublisher pushes alert events toward the worker. *amqp.Client
// implements it; a nil publisher disables the audit trail.
type AlertPublisher interface {
	PublishAlertEvent(ctx context.Context, msg *amqp.AlertEventMessage) error
}

// TransactionService owns transaction mutations and the list view.
type TransactionService struct {
	txs       store.TransactionStore
	settings  store.SettingsStore
	publisher AlertPublisher
}

func NewTransactionService(txs store.TransactionStore, settings store.SettingsStore, publisher AlertPublisher) *TransactionService {
	return &TransactionService{txs: txs, settings: settings, publisher: publisher}
}

// Create stores a new transaction. An expense with no caller-chosen
// category is classified from its description; income keeps whatever
// the caller supplied.
func (s *TransactionService) Create(ctx context.Context, input core.TransactionInput) (core.Transaction, error) {
	if input.Type == core.Expense && strings.TrimSpace(input.Category) == "" {
		input.Category = classify.Classify(input.Description)
	}

	tx, err := s.txs.Add(ctx, input)
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", tx.ID,
		"transaction_type", string(tx.Type),
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents)

	s.publishAlerts(ctx)
	return tx, nil
}

// Update replaces the stored record. The caller-chosen category is
// always kept; edits are never reclassified. A missing id is a silent
// no-op.
func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) error {
	if err := s.txs.Update(ctx, tx); err != nil {
		return err
	}
	s.publishAlerts(ctx)
	return nil
}

// Delete removes the record; a missing id is a silent no-op.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.txs.Remove(ctx, id); err != nil {
		return err
	}
	s.publishAlerts(ctx)
	return nil
}

// ListOptions filters, sorts and paginates the transaction list. The
// zero value returns everything in insertion order.
type ListOptions struct {
	Type     core.TransactionType // empty matches both
	Category string               // empty matches all
	From     core.Date            // zero means unbounded
	To       core.Date            // zero means unbounded
	SortBy   string               // "", "date" or "amount"
	Desc     bool
	Offset   int
	Limit    int // 0 means no limit
}

var ErrBadSortField = errors.New("sort field must be \"date\" or \"amount\"")

// List returns the filtered view of the store.
func (s *TransactionService) List(ctx context.Context, opts ListOptions) ([]core.Transaction, error) {
	switch opts.SortBy {
	case "", "date", "amount":
	default:
		return nil, ErrBadSortField
	}

	all, err := s.txs.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]core.Transaction, 0, len(all))
	for _, tx := range all {
		if opts.Type != "" && tx.Type != opts.Type {
			continue
		}
		if opts.Category != "" && tx.Category != opts.Category {
			continue
		}
		if !opts.From.IsZero() && tx.Date.Time.Before(opts.From.Time) {
			continue
		}
		if !opts.To.IsZero() && tx.Date.Time.After(opts.To.Time) {
			continue
		}
		filtered = append(filtered, tx)
	}

	switch opts.SortBy {
	case "date":
		sort.SliceStable(filtered, func(i, j int) bool {
			if opts.Desc {
				return filtered[j].Date.Time.Before(filtered[i].Date.Time)
			}
			return filtered[i].Date.Time.Before(filtered[j].Date.Time)
		})
	case "amount":
		sort.SliceStable(filtered, func(i, j int) bool {
			if opts.Desc {
				return filtered[j].Amount.Cents < filtered[i].Amount.Cents
			}
			return filtered[i].Amount.Cents < filtered[j].Amount.Cents
		})
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(filtered) {
			return []core.Transaction{}, nil
		}
		filtered = filtered[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(filtered) {
		filtered = filtered[:opts.Limit]
	}
	return filtered, nil
}

// publishAlerts re-evaluates alert state after a mutation and forwards
// any firing alerts to the broker. Failures are logged, never surfaced:
// the mutation already succeeded.
func (s *TransactionService) publishAlerts(ctx context.Context) {
	if s.publisher == nil {
		return
	}

	txs, err := s.txs.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list transactions for alert evaluation", "error", err)
		return
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load settings for alert evaluation", "error", err)
		return
	}

	state := alert.Evaluate(txs, settings)
	if !state.Visible {
		return
	}

	if state.Message != "" {
		msg := amqp.NewAlertEventMessage("", state.Message, state.Severity)
		if err := s.publisher.PublishAlertEvent(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish global alert event", "error", err)
		}
	}
	for _, ca := range state.Categories {
		msg := amqp.NewAlertEventMessage(ca.Category, ca.Message, state.Severity)
		if err := s.publisher.PublishAlertEvent(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish category alert event",
				"error", err, "category", ca.Category)
		}
	}
}
