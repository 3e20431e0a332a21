package memory

import (
	"context"
	"errors"
	"testing"

	"moncash/internal/core"
)

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.CreateUser(ctx, core.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == 0 {
		t.Fatal("created user should get an id")
	}

	_, err = s.CreateUser(ctx, core.User{Name: "Other", Email: "ann@example.com", PasswordHash: "y"})
	if !errors.Is(err, core.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// Exactly one row survives.
	u, err := s.UserByEmail(ctx, "ann@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != first.ID || u.Name != "Ann" {
		t.Fatalf("surviving row = %+v", u)
	}
}

func TestUpdateProfileKeepsEmailUnique(t *testing.T) {
	s := New()
	ctx := context.Background()

	ann, err := s.CreateUser(ctx, core.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatal(err)
	}
	bob, err := s.CreateUser(ctx, core.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "y"})
	if err != nil {
		t.Fatal(err)
	}

	// Moving onto a taken email is rejected like the UNIQUE key would.
	err = s.UpdateProfile(ctx, bob.ID, "Bob", "ann@example.com", "")
	if !errors.Is(err, core.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	u, _ := s.UserByID(ctx, bob.ID)
	if u.Email != "bob@example.com" {
		t.Fatalf("rejected update changed the row: %+v", u)
	}

	// Keeping your own email is not a collision.
	if err := s.UpdateProfile(ctx, ann.ID, "Annie", "ann@example.com", "555"); err != nil {
		t.Fatal(err)
	}
	u, _ = s.UserByID(ctx, ann.ID)
	if u.Name != "Annie" || u.Phone != "555" {
		t.Fatalf("update not applied: %+v", u)
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, _ := s.CreateUser(ctx, core.User{Name: "Ann", Email: "ann@example.com"})

	in := core.Transaction{
		UserID:      user.ID,
		Kind:        core.Income,
		Amount:      core.Money{Cents: 123456},
		Description: "salary",
		Category:    "work",
		Date:        core.NewDate(2024, 1, 5),
	}
	created, err := s.AddTransaction(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	list, err := s.ListTransactions(ctx, user.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(list))
	}
	got := list[0]
	if got.ID != created.ID || got.Kind != in.Kind || got.Amount != in.Amount ||
		got.Description != in.Description || got.Category != in.Category ||
		got.Date.String() != in.Date.String() {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestTransactionOrdering(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, _ := s.CreateUser(ctx, core.User{Email: "a@b.c"})

	early, _ := s.AddTransaction(ctx, core.Transaction{UserID: user.ID, Kind: core.Expense, Date: core.NewDate(2024, 1, 1)})
	late, _ := s.AddTransaction(ctx, core.Transaction{UserID: user.ID, Kind: core.Expense, Date: core.NewDate(2024, 3, 1)})
	undated, _ := s.AddTransaction(ctx, core.Transaction{UserID: user.ID, Kind: core.Expense})
	sameDay, _ := s.AddTransaction(ctx, core.Transaction{UserID: user.ID, Kind: core.Expense, Date: core.NewDate(2024, 3, 1)})

	list, err := s.ListTransactions(ctx, user.ID, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Date descending, id descending on ties, undated last.
	want := []int64{sameDay.ID, late.ID, early.ID, undated.ID}
	if len(list) != len(want) {
		t.Fatalf("got %d rows", len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("position %d: got id %d, want %d", i, list[i].ID, id)
		}
	}
}

func TestListIncludesUndatedInRange(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, _ := s.CreateUser(ctx, core.User{Email: "a@b.c"})

	s.AddTransaction(ctx, core.Transaction{UserID: user.ID, Kind: core.Income, Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 1, 5)})
	s.AddTransaction(ctx, core.Transaction{UserID: user.ID, Kind: core.Income, Amount: core.Money{Cents: 200}, Date: core.NewDate(2025, 6, 1)})
	s.AddTransaction(ctx, core.Transaction{UserID: user.ID, Kind: core.Income, Amount: core.Money{Cents: 400}}) // undated

	r := core.DateRange{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31)}
	list, err := s.ListTransactions(ctx, user.ID, &r)
	if err != nil {
		t.Fatal(err)
	}
	// The in-range row plus the undated row; the 2025 row is filtered out.
	if len(list) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(list))
	}

	// The summary over the same range counts only the dated in-range row.
	summary, err := s.Summary(ctx, user.ID, &r)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Income.Cents != 100 {
		t.Fatalf("ranged summary income = %d, want 100", summary.Income.Cents)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()
	alice, _ := s.CreateUser(ctx, core.User{Email: "alice@example.com"})
	bob, _ := s.CreateUser(ctx, core.User{Email: "bob@example.com"})

	at, _ := s.AddTransaction(ctx, core.Transaction{UserID: alice.ID, Kind: core.Income, Amount: core.Money{Cents: 100}})
	s.AddTransaction(ctx, core.Transaction{UserID: bob.ID, Kind: core.Income, Amount: core.Money{Cents: 200}})

	list, _ := s.ListTransactions(ctx, alice.ID, nil)
	for _, tx := range list {
		if tx.UserID != alice.ID {
			t.Fatalf("foreign row leaked into listing: %+v", tx)
		}
	}
	if len(list) != 1 {
		t.Fatalf("alice should see exactly her row, got %d", len(list))
	}

	// A foreign mutation must not touch the row and must report not found.
	err := s.UpdateTransaction(ctx, core.Transaction{ID: at.ID, UserID: bob.ID, Kind: core.Expense, Amount: core.Money{Cents: 999}})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, bob.ID, at.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign delete, got %v", err)
	}

	list, _ = s.ListTransactions(ctx, alice.ID, nil)
	if len(list) != 1 || list[0].Kind != core.Income || list[0].Amount.Cents != 100 {
		t.Fatalf("foreign mutation altered the row: %+v", list)
	}
}

func TestDebtLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, _ := s.CreateUser(ctx, core.User{Email: "a@b.c"})

	d, err := s.AddDebt(ctx, core.Debt{
		UserID: user.ID,
		Kind:   core.DebtOwed,
		Name:   "Alice",
		Amount: core.Money{Cents: 5000},
		Status: core.StatusPaid, // ignored: creation always starts pending
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.Status != core.StatusPending {
		t.Fatalf("new debt status = %s, want pending", d.Status)
	}

	if err := s.SetDebtStatus(ctx, user.ID, d.ID, core.StatusPaid); err != nil {
		t.Fatal(err)
	}
	list, _ := s.ListDebts(ctx, user.ID)
	if len(list) != 1 || list[0].Status != core.StatusPaid {
		t.Fatalf("expected paid debt, got %+v", list)
	}

	// UpdateDebt replaces fields but never status.
	if err := s.UpdateDebt(ctx, core.Debt{ID: d.ID, UserID: user.ID, Kind: core.Receivable, Name: "Bob", Amount: core.Money{Cents: 700}}); err != nil {
		t.Fatal(err)
	}
	list, _ = s.ListDebts(ctx, user.ID)
	got := list[0]
	if got.Kind != core.Receivable || got.Name != "Bob" || got.Amount.Cents != 700 {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Status != core.StatusPaid {
		t.Fatalf("update must not reset status, got %s", got.Status)
	}

	if err := s.DeleteDebt(ctx, user.ID, d.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteDebt(ctx, user.ID, d.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("double delete should report not found, got %v", err)
	}
}
