package memory

import (
	"context"
	"testing"

	"finboard/internal/core"
	"finboard/internal/store"
)

func input(desc string, cents int64) core.TransactionInput {
	return core.TransactionInput{
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Type:        core.Expense,
		Category:    "Food",
		Date:        core.NewDate(2025, 4, 1),
	}
}

func TestAddAssignsUniqueIDsInOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.Add(ctx, input("first", 100))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := s.Add(ctx, input("second", 200))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("ids not unique: %q vs %q", first.ID, second.ID)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Description != "first" || list[1].Description != "second" {
		t.Fatalf("insertion order lost: %+v", list)
	}
}

func TestUpdateMissingIsNoOp(t *testing.T) {
	s := New()
	ctx := context.Background()
	added, _ := s.Add(ctx, input("keep", 100))

	ghost := added
	ghost.ID = "no-such-id"
	ghost.Description = "changed"
	if err := s.Update(ctx, ghost); err != nil {
		t.Fatalf("update of missing id must not error: %v", err)
	}

	list, _ := s.List(ctx)
	if len(list) != 1 || list[0].Description != "keep" {
		t.Fatalf("store changed by no-op update: %+v", list)
	}
}

func TestRemoveMissingIsNoOp(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Add(ctx, input("a", 100))
	s.Add(ctx, input("b", 200))

	before, _ := s.List(ctx)
	if err := s.Remove(ctx, "no-such-id"); err != nil {
		t.Fatalf("remove of missing id must not error: %v", err)
	}
	after, _ := s.List(ctx)
	if len(after) != len(before) {
		t.Fatalf("length changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Fatalf("contents changed at %d", i)
		}
	}
}

func TestListReturnsSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Add(ctx, input("a", 100))

	list, _ := s.List(ctx)
	list[0].Description = "mutated"

	again, _ := s.List(ctx)
	if again[0].Description != "a" {
		t.Fatal("mutating a returned slice leaked into the store")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.AlertsEnabled {
		t.Fatal("defaults should enable alerts")
	}

	next := core.Settings{
		TotalBudgetLimit: core.Money{Cents: 120000},
		CategoryLimits:   map[string]core.Money{"Food": {Cents: 30000}},
		AlertsEnabled:    false,
	}
	if err := s.Set(ctx, next); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, _ = s.Get(ctx)
	got.CategoryLimits["Food"] = core.Money{Cents: 1}
	again, _ := s.Get(ctx)
	if again.CategoryLimits["Food"].Cents != 30000 {
		t.Fatal("mutating returned settings leaked into the store")
	}
}

func TestUserStore(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := store.User{Email: "ada@example.com", PasswordHash: "x"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateUser(ctx, u); err != store.ErrUserExists {
		t.Fatalf("duplicate create = %v, want ErrUserExists", err)
	}

	got, err := s.GetUserByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("lookup should be case-insensitive: %v", err)
	}
	if got.ID == "" {
		t.Fatal("create should assign an id")
	}
	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); err != store.ErrUserNotFound {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
}

func TestRecordAlert(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.RecordAlert(ctx, store.AlertEvent{Category: "Food", Message: "over", Severity: "warning"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	events, err := s.Alerts(ctx)
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(events) != 1 || events[0].ID == "" || events[0].CreatedAt.IsZero() {
		t.Fatalf("event not filled in: %+v", events)
	}
}
