package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"moncash/internal/core"
)

func newSQLiteRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "moncash.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *Repository, email string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{Name: "Ann", Email: email, PasswordHash: "hash"})
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestSQLiteUserRoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	created := seedUser(t, repo, "ann@example.com")
	if created.ID == 0 {
		t.Fatal("insert returned no id")
	}

	byEmail, err := repo.UserByEmail(ctx, "ann@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if byEmail.ID != created.ID || byEmail.PasswordHash != "hash" {
		t.Fatalf("by email = %+v", byEmail)
	}

	byID, err := repo.UserByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if byID.Email != "ann@example.com" {
		t.Fatalf("by id = %+v", byID)
	}

	if _, err := repo.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, core.ErrUserNotFound) {
		t.Fatalf("unknown email: %v", err)
	}
}

func TestSQLiteDuplicateEmail(t *testing.T) {
	repo := newSQLiteRepo(t)
	seedUser(t, repo, "ann@example.com")

	_, err := repo.CreateUser(context.Background(), core.User{Name: "Other", Email: "ann@example.com", PasswordHash: "x"})
	if !errors.Is(err, core.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestSQLiteUpdateProfile(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "ann@example.com")

	if err := repo.UpdateProfile(ctx, u.ID, "Anna", "anna@example.com", "+39000"); err != nil {
		t.Fatal(err)
	}
	got, err := repo.UserByID(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Anna" || got.Email != "anna@example.com" || got.Phone != "+39000" {
		t.Fatalf("profile = %+v", got)
	}

	if err := repo.UpdateProfile(ctx, 9999, "X", "x@y.z", ""); !errors.Is(err, core.ErrUserNotFound) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestSQLiteTransactionLifecycle(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "ann@example.com")

	created, err := repo.AddTransaction(ctx, core.Transaction{
		UserID:      u.ID,
		Kind:        core.Income,
		Amount:      core.Money{Cents: 150000},
		Description: "salary",
		Category:    "work",
		Date:        core.NewDate(2024, 3, 1),
	})
	if err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListTransactions(ctx, u.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("listed %d rows", len(list))
	}
	got := list[0]
	if got.ID != created.ID || got.Kind != core.Income || got.Amount.Cents != 150000 ||
		got.Description != "salary" || got.Category != "work" || got.Date.String() != "2024-03-01" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	got.Description = "bonus"
	got.Amount = core.Money{Cents: 200000}
	if err := repo.UpdateTransaction(ctx, got); err != nil {
		t.Fatal(err)
	}

	list, _ = repo.ListTransactions(ctx, u.ID, nil)
	if list[0].Description != "bonus" || list[0].Amount.Cents != 200000 {
		t.Fatalf("update not applied: %+v", list[0])
	}

	if err := repo.DeleteTransaction(ctx, u.ID, created.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteTransaction(ctx, u.ID, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("double delete: %v", err)
	}
}

// Re-sending the current values is a successful update, not a missing row.
// SQLite counts matched rows natively; the MySQL DSN must carry
// clientFoundRows=true to report the same.
func TestSQLiteIdempotentUpdates(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "ann@example.com")

	tx, err := repo.AddTransaction(ctx, core.Transaction{UserID: u.ID, Kind: core.Income, Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 3, 1)})
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("unchanged transaction update: %v", err)
	}

	d, err := repo.AddDebt(ctx, core.Debt{UserID: u.ID, Kind: core.DebtOwed, Name: "Alice", Amount: core.Money{Cents: 5000}})
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.SetDebtStatus(ctx, u.ID, d.ID, core.StatusPending); err != nil {
		t.Fatalf("re-sent current status: %v", err)
	}
}

func TestSQLiteNullColumns(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "ann@example.com")

	// No description, category or date: all three stored as NULL.
	created, err := repo.AddTransaction(ctx, core.Transaction{
		UserID: u.ID,
		Kind:   core.Expense,
		Amount: core.Money{Cents: 100},
	})
	if err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListTransactions(ctx, u.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := list[0]
	if got.ID != created.ID || got.Description != "" || got.Category != "" || !got.Date.IsZero() {
		t.Fatalf("null columns round trip: %+v", got)
	}
}

func TestSQLiteRangeSemantics(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "ann@example.com")

	repo.AddTransaction(ctx, core.Transaction{UserID: u.ID, Kind: core.Income, Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 1, 15)})
	repo.AddTransaction(ctx, core.Transaction{UserID: u.ID, Kind: core.Income, Amount: core.Money{Cents: 200}, Date: core.NewDate(2024, 6, 1)})
	repo.AddTransaction(ctx, core.Transaction{UserID: u.ID, Kind: core.Income, Amount: core.Money{Cents: 400}}) // undated

	dr := &core.DateRange{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31)}

	// Listing admits the undated row alongside the in-range one.
	list, err := repo.ListTransactions(ctx, u.ID, dr)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("ranged list = %d rows", len(list))
	}
	// Undated sorts after dated rows.
	if list[len(list)-1].Amount.Cents != 400 {
		t.Fatalf("undated row should sort last: %+v", list)
	}

	// The summary over the same range counts only the dated row.
	sum, err := repo.Summary(ctx, u.ID, dr)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Income.Cents != 100 || sum.Balance.Cents != 100 {
		t.Fatalf("ranged summary = %+v", sum)
	}

	// Unranged, every row counts.
	sum, err = repo.Summary(ctx, u.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Income.Cents != 700 {
		t.Fatalf("unranged summary = %+v", sum)
	}
}

func TestSQLiteOwnershipScoping(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	alice := seedUser(t, repo, "alice@example.com")
	bob := seedUser(t, repo, "bob@example.com")

	tx, err := repo.AddTransaction(ctx, core.Transaction{UserID: alice.ID, Kind: core.Income, Amount: core.Money{Cents: 100}})
	if err != nil {
		t.Fatal(err)
	}

	err = repo.UpdateTransaction(ctx, core.Transaction{ID: tx.ID, UserID: bob.ID, Kind: core.Expense, Amount: core.Money{Cents: 999}})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign update: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, bob.ID, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign delete: %v", err)
	}

	list, _ := repo.ListTransactions(ctx, alice.ID, nil)
	if len(list) != 1 || list[0].Amount.Cents != 100 {
		t.Fatalf("row changed by foreign mutation: %+v", list)
	}
}

func TestSQLiteDebtLifecycle(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "ann@example.com")

	d, err := repo.AddDebt(ctx, core.Debt{
		UserID:  u.ID,
		Kind:    core.DebtOwed,
		Name:    "Alice",
		Amount:  core.Money{Cents: 5000},
		DueDate: core.NewDate(2024, 6, 1),
		Status:  core.StatusPaid, // ignored: inserts always start pending
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.Status != core.StatusPending {
		t.Fatalf("new debt status = %s", d.Status)
	}

	if err := repo.SetDebtStatus(ctx, u.ID, d.ID, core.StatusPaid); err != nil {
		t.Fatal(err)
	}
	list, err := repo.ListDebts(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Status != core.StatusPaid || list[0].DueDate.String() != "2024-06-01" {
		t.Fatalf("debt = %+v", list)
	}

	// Update replaces the row fields but never the status column.
	if err := repo.UpdateDebt(ctx, core.Debt{ID: d.ID, UserID: u.ID, Kind: core.Receivable, Name: "Bob", Amount: core.Money{Cents: 700}}); err != nil {
		t.Fatal(err)
	}
	list, _ = repo.ListDebts(ctx, u.ID)
	got := list[0]
	if got.Kind != core.Receivable || got.Name != "Bob" || got.Amount.Cents != 700 || !got.DueDate.IsZero() {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Status != core.StatusPaid {
		t.Fatalf("status reset by update: %s", got.Status)
	}

	if err := repo.SetDebtStatus(ctx, u.ID, 9999, core.StatusPaid); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown debt: %v", err)
	}
	if err := repo.DeleteDebt(ctx, u.ID, d.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteDebt(ctx, u.ID, d.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("double delete: %v", err)
	}
}

func TestSQLiteDebtOrdering(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "ann@example.com")

	first, _ := repo.AddDebt(ctx, core.Debt{UserID: u.ID, Kind: core.DebtOwed, Name: "A", Amount: core.Money{Cents: 1}})
	second, _ := repo.AddDebt(ctx, core.Debt{UserID: u.ID, Kind: core.DebtOwed, Name: "B", Amount: core.Money{Cents: 2}})

	list, err := repo.ListDebts(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("debts not in reverse insertion order: %+v", list)
	}
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moncash.db")

	repo, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	seedUser(t, repo, "ann@example.com")
	repo.Close()

	// Reopening runs migrations again and must keep the data.
	repo, err = NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	if _, err := repo.UserByEmail(context.Background(), "ann@example.com"); err != nil {
		t.Fatal(err)
	}
}
