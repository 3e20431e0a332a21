package services

import (
	"context"
	"errors"
	"testing"

	"moncash/internal/core"
	"moncash/internal/store/memory"
)

func newLedgerService(t *testing.T) (*LedgerService, int64) {
	t.Helper()
	repos := memory.New()
	user, err := repos.CreateUser(context.Background(), core.User{Name: "Ann", Email: "ann@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	return NewLedgerService(repos, repos), user.ID
}

func TestAddTransactionDefaultsDate(t *testing.T) {
	svc, userID := newLedgerService(t)
	ctx := context.Background()

	created, err := svc.AddTransaction(ctx, core.Transaction{
		UserID: userID,
		Kind:   core.Expense,
		Amount: core.Money{Cents: 1500},
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.Date.IsZero() {
		t.Fatal("omitted date should default to today")
	}
	if created.Date.String() != core.Today().String() {
		t.Fatalf("defaulted date = %s", created.Date)
	}
}

func TestAddTransactionValidation(t *testing.T) {
	svc, userID := newLedgerService(t)
	ctx := context.Background()

	_, err := svc.AddTransaction(ctx, core.Transaction{
		UserID: userID,
		Kind:   core.TransactionKind("transfer"),
		Amount: core.Money{Cents: 100},
	})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("unknown kind: expected ErrInvalidInput, got %v", err)
	}
}

func TestTransactionCRUD(t *testing.T) {
	svc, userID := newLedgerService(t)
	ctx := context.Background()

	created, err := svc.AddTransaction(ctx, core.Transaction{
		UserID:      userID,
		Kind:        core.Income,
		Amount:      core.Money{Cents: 250000},
		Description: "salary",
		Category:    "work",
		Date:        core.NewDate(2024, 2, 1),
	})
	if err != nil {
		t.Fatal(err)
	}

	created.Description = "bonus"
	created.Amount = core.Money{Cents: 300000}
	if err := svc.UpdateTransaction(ctx, created); err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListTransactions(ctx, userID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Description != "bonus" || list[0].Amount.Cents != 300000 {
		t.Fatalf("update not visible: %+v", list)
	}

	if err := svc.DeleteTransaction(ctx, userID, created.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteTransaction(ctx, userID, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestSummaryPassesRangeThrough(t *testing.T) {
	svc, userID := newLedgerService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, core.Transaction{UserID: userID, Kind: core.Income, Amount: core.Money{Cents: 10000}, Date: core.NewDate(2024, 5, 10)})
	svc.AddTransaction(ctx, core.Transaction{UserID: userID, Kind: core.Expense, Amount: core.Money{Cents: 4000}, Date: core.NewDate(2024, 5, 20)})
	svc.AddTransaction(ctx, core.Transaction{UserID: userID, Kind: core.Income, Amount: core.Money{Cents: 77777}, Date: core.NewDate(2023, 1, 1)})

	r := core.MonthRange(2024, 5)
	summary, err := svc.Summary(ctx, userID, &r)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Income.Cents != 10000 || summary.Expense.Cents != 4000 || summary.Balance.Cents != 6000 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestDebtStatusValidation(t *testing.T) {
	svc, userID := newLedgerService(t)
	ctx := context.Background()

	d, err := svc.AddDebt(ctx, core.Debt{
		UserID: userID,
		Kind:   core.DebtOwed,
		Name:   "Alice",
		Amount: core.Money{Cents: 5000},
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.Status != core.StatusPending {
		t.Fatalf("new debt status = %s", d.Status)
	}

	if err := svc.SetDebtStatus(ctx, userID, d.ID, core.DebtStatus("settled")); !errors.Is(err, core.ErrInvalidStatus) {
		t.Fatalf("unknown status: expected ErrInvalidStatus, got %v", err)
	}
	if err := svc.SetDebtStatus(ctx, userID, d.ID, core.StatusPaid); err != nil {
		t.Fatal(err)
	}

	list, _ := svc.ListDebts(ctx, userID)
	if len(list) != 1 || list[0].Status != core.StatusPaid {
		t.Fatalf("status not applied: %+v", list)
	}
}

func TestSetDebtStatusUnknownRow(t *testing.T) {
	svc, userID := newLedgerService(t)
	if err := svc.SetDebtStatus(context.Background(), userID, 999, core.StatusPaid); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateDebtKeepsStatus(t *testing.T) {
	svc, userID := newLedgerService(t)
	ctx := context.Background()

	d, _ := svc.AddDebt(ctx, core.Debt{UserID: userID, Kind: core.Receivable, Name: "Bob", Amount: core.Money{Cents: 2000}})
	if err := svc.SetDebtStatus(ctx, userID, d.ID, core.StatusPaid); err != nil {
		t.Fatal(err)
	}

	d.Name = "Robert"
	d.Amount = core.Money{Cents: 2500}
	d.Status = core.StatusPending // must be ignored
	if err := svc.UpdateDebt(ctx, d); err != nil {
		t.Fatal(err)
	}

	list, _ := svc.ListDebts(ctx, userID)
	got := list[0]
	if got.Name != "Robert" || got.Amount.Cents != 2500 {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Status != core.StatusPaid {
		t.Fatalf("update must not reset status, got %s", got.Status)
	}
}
