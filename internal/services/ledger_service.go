package services

import (
	"context"
	"log/slog"

	"moncash/internal/core"
	"moncash/internal/store"
)

// LedgerService implements the transaction and debt operations, scoped to
// the authenticated user id the handlers resolved through the gate.
type LedgerService struct {
	txs   store.TransactionRepository
	debts store.DebtRepository
}

func NewLedgerService(txs store.TransactionRepository, debts store.DebtRepository) *LedgerService {
	return &LedgerService{txs: txs, debts: debts}
}

// ListTransactions returns the user's transactions, newest first. A range
// filter admits undated rows in addition to rows inside [start, end].
func (s *LedgerService) ListTransactions(ctx context.Context, userID int64, r *core.DateRange) ([]core.Transaction, error) {
	return s.txs.ListTransactions(ctx, userID, r)
}

// AddTransaction records a transaction; the date defaults to today when
// omitted. Amount sign and magnitude are accepted as sent.
func (s *LedgerService) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.Date.IsZero() {
		t.Date = core.Today()
	}
	return s.txs.AddTransaction(ctx, t)
}

// UpdateTransaction fully replaces the row's mutable fields. A mutation
// that matches no owned row reports core.ErrNotFound instead of silently
// succeeding.
func (s *LedgerService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.txs.UpdateTransaction(ctx, t)
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	return s.txs.DeleteTransaction(ctx, userID, id)
}

// Summary aggregates income, expense and balance. The range filter here
// excludes undated rows, unlike ListTransactions; see the repository docs.
func (s *LedgerService) Summary(ctx context.Context, userID int64, r *core.DateRange) (core.Summary, error) {
	return s.txs.Summary(ctx, userID, r)
}

// ListDebts returns the user's debts in reverse insertion order.
func (s *LedgerService) ListDebts(ctx context.Context, userID int64) ([]core.Debt, error) {
	return s.debts.ListDebts(ctx, userID)
}

// AddDebt records a debt or receivable; status is always pending at
// creation.
func (s *LedgerService) AddDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	d.Status = core.StatusPending
	return s.debts.AddDebt(ctx, d)
}

// UpdateDebt replaces kind, counterparty, amount and due date. Status is
// not touched here; use SetDebtStatus.
func (s *LedgerService) UpdateDebt(ctx context.Context, d core.Debt) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.debts.UpdateDebt(ctx, d)
}

// SetDebtStatus updates only the status. Anything outside the closed
// enumeration is rejected before the store is touched.
func (s *LedgerService) SetDebtStatus(ctx context.Context, userID, id int64, status core.DebtStatus) error {
	if !status.IsValid() {
		return core.ErrInvalidStatus
	}
	if err := s.debts.SetDebtStatus(ctx, userID, id, status); err != nil {
		return err
	}
	slog.InfoContext(ctx, "debt status updated", "debt_id", id, "user_id", userID, "status", status)
	return nil
}

func (s *LedgerService) DeleteDebt(ctx context.Context, userID, id int64) error {
	return s.debts.DeleteDebt(ctx, userID, id)
}
