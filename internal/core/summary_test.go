package core

import (
	"math/rand"
	"testing"
)

func TestSummarizeScenario(t *testing.T) {
	txs := []Transaction{
		{Kind: Income, Amount: Money{Cents: 100000000}, Description: "salary", Category: "work", Date: NewDate(2024, 1, 5)},
		{Kind: Expense, Amount: Money{Cents: 25000000}, Description: "groceries", Category: "food", Date: NewDate(2024, 1, 10)},
	}
	r := DateRange{Start: NewDate(2024, 1, 1), End: NewDate(2024, 1, 31)}

	s := Summarize(txs, &r)
	if s.Income.Cents != 100000000 {
		t.Fatalf("income = %d", s.Income.Cents)
	}
	if s.Expense.Cents != 25000000 {
		t.Fatalf("expense = %d", s.Expense.Cents)
	}
	if s.Balance.Cents != 75000000 {
		t.Fatalf("balance = %d", s.Balance.Cents)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil)
	if s.Income.Cents != 0 || s.Expense.Cents != 0 || s.Balance.Cents != 0 {
		t.Fatalf("empty set should summarize to zeroes, got %+v", s)
	}
}

// Balance must equal income minus expense for any set of transactions.
func TestSummarizeBalanceInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(30)
		txs := make([]Transaction, 0, n)
		for i := 0; i < n; i++ {
			kind := Income
			if rng.Intn(2) == 0 {
				kind = Expense
			}
			var date Date
			if rng.Intn(4) != 0 {
				date = NewDate(2024, 1+rng.Intn(12), 1+rng.Intn(28))
			}
			txs = append(txs, Transaction{
				Kind:   kind,
				Amount: Money{Cents: rng.Int63n(1000000) - 100000},
				Date:   date,
			})
		}

		for _, r := range []*DateRange{nil, {Start: NewDate(2024, 3, 1), End: NewDate(2024, 9, 30)}} {
			s := Summarize(txs, r)
			if s.Balance.Cents != s.Income.Cents-s.Expense.Cents {
				t.Fatalf("trial %d: balance %d != income %d - expense %d",
					trial, s.Balance.Cents, s.Income.Cents, s.Expense.Cents)
			}
		}
	}
}

// A range filter excludes undated transactions from the totals even though
// listing includes them; without a range they count.
func TestSummarizeExcludesUndatedInRange(t *testing.T) {
	txs := []Transaction{
		{Kind: Income, Amount: Money{Cents: 500}, Date: NewDate(2024, 1, 10)},
		{Kind: Income, Amount: Money{Cents: 300}}, // undated
	}
	r := DateRange{Start: NewDate(2024, 1, 1), End: NewDate(2024, 1, 31)}

	filtered := Summarize(txs, &r)
	if filtered.Income.Cents != 500 {
		t.Fatalf("ranged income = %d, want 500 (undated excluded)", filtered.Income.Cents)
	}

	unfiltered := Summarize(txs, nil)
	if unfiltered.Income.Cents != 800 {
		t.Fatalf("unranged income = %d, want 800", unfiltered.Income.Cents)
	}
}

func TestComputeDebtTotals(t *testing.T) {
	debts := []Debt{
		{Kind: DebtOwed, Name: "Alice", Amount: Money{Cents: 1000}, Status: StatusPending},
		{Kind: DebtOwed, Name: "Alice", Amount: Money{Cents: 2000}, Status: StatusPaid},
		{Kind: Receivable, Name: "Alice", Amount: Money{Cents: 700}, Status: StatusPending},
		{Kind: Receivable, Name: "Alice", Amount: Money{Cents: 300}, Status: StatusPaid},
	}

	totals := ComputeDebtTotals(debts)

	// Paid rows stay in the totals but leave the unpaid subsets.
	if totals.TotalDebt.Cents != 3000 {
		t.Fatalf("total debt = %d", totals.TotalDebt.Cents)
	}
	if totals.UnpaidDebt.Cents != 1000 {
		t.Fatalf("unpaid debt = %d", totals.UnpaidDebt.Cents)
	}
	if totals.TotalReceivable.Cents != 1000 {
		t.Fatalf("total receivable = %d", totals.TotalReceivable.Cents)
	}
	if totals.UnpaidReceivable.Cents != 700 {
		t.Fatalf("unpaid receivable = %d", totals.UnpaidReceivable.Cents)
	}
}
