package sheets

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"moncash/internal/core"
)

// sheetRow is one data row with its 1-based position in the sheet.
type sheetRow struct {
	index int
	cols  []string
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func col(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return cols[idx]
}

func parseID(cols []string, idx int) int64 {
	id, err := strconv.ParseInt(col(cols, idx), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func parseCents(cols []string, idx int) int64 {
	cents, err := strconv.ParseInt(col(cols, idx), 10, 64)
	if err != nil {
		return 0
	}
	return cents
}

func parseDate(cols []string, idx int) core.Date {
	d, err := core.ParseDate(col(cols, idx))
	if err != nil {
		return core.Date{}
	}
	return d
}

func dateCell(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// Users sheet: id, name, email, password_hash, phone.

func userRow(u core.User) []any {
	return []any{
		strconv.FormatInt(u.ID, 10),
		u.Name, u.Email, u.PasswordHash, u.Phone,
	}
}

func rowUser(cols []string) core.User {
	return core.User{
		ID:           parseID(cols, 0),
		Name:         col(cols, 1),
		Email:        col(cols, 2),
		PasswordHash: col(cols, 3),
		Phone:        col(cols, 4),
	}
}

// Transactions sheet: id, user_id, type, amount_cents, description,
// category, date.

func transactionRow(t core.Transaction) []any {
	return []any{
		strconv.FormatInt(t.ID, 10),
		strconv.FormatInt(t.UserID, 10),
		string(t.Kind),
		strconv.FormatInt(t.Amount.Cents, 10),
		t.Description, t.Category,
		dateCell(t.Date),
	}
}

func rowTransaction(cols []string) core.Transaction {
	return core.Transaction{
		ID:          parseID(cols, 0),
		UserID:      parseID(cols, 1),
		Kind:        core.TransactionKind(col(cols, 2)),
		Amount:      core.Money{Cents: parseCents(cols, 3)},
		Description: col(cols, 4),
		Category:    col(cols, 5),
		Date:        parseDate(cols, 6),
	}
}

// Debts sheet: id, user_id, type, name, amount_cents, due_date, status.

func debtRow(d core.Debt) []any {
	return []any{
		strconv.FormatInt(d.ID, 10),
		strconv.FormatInt(d.UserID, 10),
		string(d.Kind),
		d.Name,
		strconv.FormatInt(d.Amount.Cents, 10),
		dateCell(d.DueDate),
		string(d.Status),
	}
}

func rowDebt(cols []string) core.Debt {
	return core.Debt{
		ID:      parseID(cols, 0),
		UserID:  parseID(cols, 1),
		Kind:    core.DebtKind(col(cols, 2)),
		Name:    col(cols, 3),
		Amount:  core.Money{Cents: parseCents(cols, 4)},
		DueDate: parseDate(cols, 5),
		Status:  core.DebtStatus(col(cols, 6)),
	}
}

// sortTransactions orders by date descending then id descending with
// undated rows last, the same ordering the relational backends produce.
func sortTransactions(txs []core.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		switch {
		case a.Date.IsZero() != b.Date.IsZero():
			return b.Date.IsZero()
		case !a.Date.IsZero() && !a.Date.Equal(b.Date.Time):
			return a.Date.After(b.Date)
		default:
			return a.ID > b.ID
		}
	})
}
