// Package store defines the repository ports every storage backend
// implements. Application code depends on these interfaces only; which
// backing technology is active (memory, sqlite, mysql, sheets) is a
// deployment decision made by the backend factory.
package store

import (
	"context"

	"moncash/internal/core"
)

type (
	// UserRepository persists credential records.
	UserRepository interface {
		// CreateUser inserts a new user. Returns core.ErrDuplicateEmail if
		// the email is already present.
		CreateUser(ctx context.Context, u core.User) (core.User, error)

		// UserByEmail returns core.ErrUserNotFound when no row matches.
		UserByEmail(ctx context.Context, email string) (core.User, error)

		// UserByID returns core.ErrUserNotFound when no row matches.
		UserByID(ctx context.Context, id int64) (core.User, error)

		// UpdateProfile replaces name, email and phone for the given user.
		UpdateProfile(ctx context.Context, id int64, name, email, phone string) error
	}

	// TransactionRepository persists income/expense rows scoped by owner.
	TransactionRepository interface {
		// ListTransactions returns the user's transactions ordered by date
		// descending, ties broken by id descending. A range filter admits
		// undated rows in addition to rows inside [start, end].
		ListTransactions(ctx context.Context, userID int64, r *core.DateRange) ([]core.Transaction, error)

		// AddTransaction inserts the row and returns it with its id set.
		AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)

		// UpdateTransaction fully replaces mutable fields of the row with
		// t.ID owned by t.UserID. Returns core.ErrNotFound when no row was
		// affected (missing id or foreign owner).
		UpdateTransaction(ctx context.Context, t core.Transaction) error

		// DeleteTransaction removes the row; core.ErrNotFound when no row
		// was affected.
		DeleteTransaction(ctx context.Context, userID, id int64) error

		// Summary aggregates income/expense/balance. Unlike listing, a range
		// filter here excludes undated rows (date >= start AND date <= end).
		Summary(ctx context.Context, userID int64, r *core.DateRange) (core.Summary, error)
	}

	// DebtRepository persists debt/receivable rows scoped by owner.
	DebtRepository interface {
		// ListDebts returns the user's debts ordered by id descending.
		ListDebts(ctx context.Context, userID int64) ([]core.Debt, error)

		// AddDebt inserts the row with status forced to pending.
		AddDebt(ctx context.Context, d core.Debt) (core.Debt, error)

		// UpdateDebt replaces kind, name, amount and due date; status is
		// untouched. core.ErrNotFound when no row was affected.
		UpdateDebt(ctx context.Context, d core.Debt) error

		// SetDebtStatus updates status only. core.ErrNotFound when no row
		// was affected.
		SetDebtStatus(ctx context.Context, userID, id int64, status core.DebtStatus) error

		// DeleteDebt removes the row; core.ErrNotFound when no row was
		// affected.
		DeleteDebt(ctx context.Context, userID, id int64) error
	}

	// Repositories is the full storage surface a backend provides.
	Repositories interface {
		UserRepository
		TransactionRepository
		DebtRepository
	}
)
