package sheets

import (
	"context"
	"log/slog"
	"sort"

	"moncash/internal/core"
)

func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(ctx, usersSheet)
	if err != nil {
		return core.User{}, err
	}
	var maxID int64
	for _, row := range rows {
		if rowUser(row.cols).Email == u.Email {
			return core.User{}, core.ErrDuplicateEmail
		}
		if id := parseID(row.cols, 0); id > maxID {
			maxID = id
		}
	}

	u.ID = maxID + 1
	if err := s.appendRow(ctx, usersSheet, userRow(u)); err != nil {
		return core.User{}, err
	}
	slog.InfoContext(ctx, "user created", "user_id", u.ID, "backend", "sheets")
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (core.User, error) {
	rows, err := s.readRows(ctx, usersSheet)
	if err != nil {
		return core.User{}, err
	}
	for _, row := range rows {
		if u := rowUser(row.cols); u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrUserNotFound
}

func (s *Store) UserByID(ctx context.Context, id int64) (core.User, error) {
	row, err := s.findRow(ctx, usersSheet, func(cols []string) bool {
		return parseID(cols, 0) == id
	})
	if err != nil {
		return core.User{}, err
	}
	if row == nil {
		return core.User{}, core.ErrUserNotFound
	}
	return rowUser(row.cols), nil
}

func (s *Store) UpdateProfile(ctx context.Context, id int64, name, email, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(ctx, usersSheet)
	if err != nil {
		return err
	}
	var target *sheetRow
	for i := range rows {
		u := rowUser(rows[i].cols)
		if u.ID == id {
			target = &rows[i]
			continue
		}
		if u.Email == email {
			return core.ErrDuplicateEmail
		}
	}
	if target == nil {
		return core.ErrUserNotFound
	}
	u := rowUser(target.cols)
	u.Name, u.Email, u.Phone = name, email, phone
	return s.updateRow(ctx, usersSheet, target.index, userRow(u))
}

func (s *Store) ListTransactions(ctx context.Context, userID int64, r *core.DateRange) ([]core.Transaction, error) {
	rows, err := s.readRows(ctx, transactionsSheet)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t := rowTransaction(row.cols)
		if t.UserID != userID {
			continue
		}
		if r != nil && !r.ContainsOrUndated(t.Date) {
			continue
		}
		out = append(out, t)
	}
	sortTransactions(out)
	return out, nil
}

func (s *Store) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.nextID(ctx, transactionsSheet)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = id
	if err := s.appendRow(ctx, transactionsSheet, transactionRow(t)); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.findOwnedRow(ctx, transactionsSheet, t.UserID, t.ID)
	if err != nil {
		return err
	}
	return s.updateRow(ctx, transactionsSheet, row.index, transactionRow(t))
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.findOwnedRow(ctx, transactionsSheet, userID, id)
	if err != nil {
		return err
	}
	return s.deleteRow(ctx, transactionsSheet, row.index)
}

func (s *Store) Summary(ctx context.Context, userID int64, r *core.DateRange) (core.Summary, error) {
	rows, err := s.readRows(ctx, transactionsSheet)
	if err != nil {
		return core.Summary{}, err
	}
	owned := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		if t := rowTransaction(row.cols); t.UserID == userID {
			owned = append(owned, t)
		}
	}
	return core.Summarize(owned, r), nil
}

func (s *Store) ListDebts(ctx context.Context, userID int64) ([]core.Debt, error) {
	rows, err := s.readRows(ctx, debtsSheet)
	if err != nil {
		return nil, err
	}
	out := make([]core.Debt, 0, len(rows))
	for _, row := range rows {
		if d := rowDebt(row.cols); d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) AddDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.nextID(ctx, debtsSheet)
	if err != nil {
		return core.Debt{}, err
	}
	d.ID = id
	d.Status = core.StatusPending
	if err := s.appendRow(ctx, debtsSheet, debtRow(d)); err != nil {
		return core.Debt{}, err
	}
	return d, nil
}

func (s *Store) UpdateDebt(ctx context.Context, d core.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.findOwnedRow(ctx, debtsSheet, d.UserID, d.ID)
	if err != nil {
		return err
	}
	existing := rowDebt(row.cols)
	existing.Kind = d.Kind
	existing.Name = d.Name
	existing.Amount = d.Amount
	existing.DueDate = d.DueDate
	return s.updateRow(ctx, debtsSheet, row.index, debtRow(existing))
}

func (s *Store) SetDebtStatus(ctx context.Context, userID, id int64, status core.DebtStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.findOwnedRow(ctx, debtsSheet, userID, id)
	if err != nil {
		return err
	}
	existing := rowDebt(row.cols)
	existing.Status = status
	return s.updateRow(ctx, debtsSheet, row.index, debtRow(existing))
}

func (s *Store) DeleteDebt(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.findOwnedRow(ctx, debtsSheet, userID, id)
	if err != nil {
		return err
	}
	return s.deleteRow(ctx, debtsSheet, row.index)
}

func (s *Store) findRow(ctx context.Context, sheet string, match func(cols []string) bool) (*sheetRow, error) {
	rows, err := s.readRows(ctx, sheet)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if match(rows[i].cols) {
			return &rows[i], nil
		}
	}
	return nil, nil
}

// findOwnedRow locates a row by id and owner. A missing id and a foreign
// owner both come back as core.ErrNotFound.
func (s *Store) findOwnedRow(ctx context.Context, sheet string, userID, id int64) (*sheetRow, error) {
	row, err := s.findRow(ctx, sheet, func(cols []string) bool {
		return parseID(cols, 0) == id && parseID(cols, 1) == userID
	})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, core.ErrNotFound
	}
	return row, nil
}
