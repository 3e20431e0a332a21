package core

// Summary aggregates income and expense over a set of transactions.
// Balance is always Income - Expense.
type Summary struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Balance Money `json:"balance"`
}

// DebtTotals aggregates a user's debts toward a single counterparty.
// Paid rows count toward the totals but not toward the unpaid subsets.
type DebtTotals struct {
	TotalDebt        Money `json:"total_debt"`
	TotalReceivable  Money `json:"total_receivable"`
	UnpaidDebt       Money `json:"unpaid_debt"`
	UnpaidReceivable Money `json:"unpaid_receivable"`
}

// Summarize computes income/expense/balance over the given transactions.
//
// When a range is supplied the filter is date >= start AND date <= end:
// undated transactions are excluded here even though listing queries include
// them. That asymmetry is intentional; see the repository docs.
func Summarize(txs []Transaction, r *DateRange) Summary {
	var s Summary
	for _, t := range txs {
		if r != nil && !r.ContainsDated(t.Date) {
			continue
		}
		switch t.Kind {
		case Income:
			s.Income = s.Income.Add(t.Amount)
		case Expense:
			s.Expense = s.Expense.Add(t.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// ComputeDebtTotals aggregates the given debts by kind and status.
func ComputeDebtTotals(debts []Debt) DebtTotals {
	var t DebtTotals
	for _, d := range debts {
		switch d.Kind {
		case DebtOwed:
			t.TotalDebt = t.TotalDebt.Add(d.Amount)
			if d.Status != StatusPaid {
				t.UnpaidDebt = t.UnpaidDebt.Add(d.Amount)
			}
		case Receivable:
			t.TotalReceivable = t.TotalReceivable.Add(d.Amount)
			if d.Status != StatusPaid {
				t.UnpaidReceivable = t.UnpaidReceivable.Add(d.Amount)
			}
		}
	}
	return t
}
