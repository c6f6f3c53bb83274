package services

import (
	"context"
	"fmt"
	"log/slog"

	"finboard/internal/core"
	"finboard/internal/store"
)

// SettingsService guards the budget configuration. The category-limit
// sum rule is enforced here at save time, not continuously against
// stored state.
type SettingsService struct {
	settings store.SettingsStore
}

func NewSettingsService(settings store.SettingsStore) *SettingsService {
	return &SettingsService{settings: settings}
}

func (s *SettingsService) Get(ctx context.Context) (core.Settings, error) {
	return s.settings.Get(ctx)
}

// Save validates and replaces the whole settings object. Nothing is
// written when validation fails.
func (s *SettingsService) Save(ctx context.Context, next core.Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if sum := next.CategoryLimitTotal(); sum.Cents > next.TotalBudgetLimit.Cents {
		return fmt.Errorf("category limits sum to %s, exceeding the total budget limit %s",
			sum.Decimal(), next.TotalBudgetLimit.Decimal())
	}

	if err := s.settings.Set(ctx, next); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Settings saved",
		"total_budget_limit_cents", next.TotalBudgetLimit.Cents,
		"category_limits", len(next.CategoryLimits),
		"alerts_enabled", next.AlertsEnabled)
	return nil
}
