// Package memory is the in-memory storage backend. It is the default
// backend for local development and the double used by service and handler
// tests: same semantics as the relational backends, no external process.
package memory

import (
	"context"
	"sort"
	"sync"

	"moncash/internal/core"
	"moncash/internal/store"
)

type Store struct {
	mu sync.Mutex

	users  map[int64]core.User
	txs    map[int64]core.Transaction
	debts  map[int64]core.Debt
	nextID int64
}

var _ store.Repositories = (*Store)(nil)

func New() *Store {
	return &Store{
		users: make(map[int64]core.User),
		txs:   make(map[int64]core.Transaction),
		debts: make(map[int64]core.Debt),
	}
}

func (s *Store) nextSeq() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return core.User{}, core.ErrDuplicateEmail
		}
	}
	u.ID = s.nextSeq()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrUserNotFound
}

func (s *Store) UserByID(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) UpdateProfile(_ context.Context, id int64, name, email, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.ErrUserNotFound
	}
	for _, existing := range s.users {
		if existing.ID != id && existing.Email == email {
			return core.ErrDuplicateEmail
		}
	}
	u.Name, u.Email, u.Phone = name, email, phone
	s.users[id] = u
	return nil
}

func (s *Store) ListTransactions(_ context.Context, userID int64, r *core.DateRange) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0)
	for _, t := range s.txs {
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

// sortTransactions orders by date descending then id descending. Undated
// rows sort last, matching ORDER BY date DESC over nullable columns.
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

func (s *Store) AddTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextSeq()
	s.txs[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.txs[t.ID]
	if !ok || existing.UserID != t.UserID {
		return core.ErrNotFound
	}
	s.txs[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.txs[id]
	if !ok || existing.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.txs, id)
	return nil
}

func (s *Store) Summary(_ context.Context, userID int64, r *core.DateRange) (core.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := make([]core.Transaction, 0)
	for _, t := range s.txs {
		if t.UserID == userID {
			owned = append(owned, t)
		}
	}
	return core.Summarize(owned, r), nil
}

func (s *Store) ListDebts(_ context.Context, userID int64) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Debt, 0)
	for _, d := range s.debts {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) AddDebt(_ context.Context, d core.Debt) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.nextSeq()
	d.Status = core.StatusPending
	s.debts[d.ID] = d
	return d, nil
}

func (s *Store) UpdateDebt(_ context.Context, d core.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.debts[d.ID]
	if !ok || existing.UserID != d.UserID {
		return core.ErrNotFound
	}
	existing.Kind = d.Kind
	existing.Name = d.Name
	existing.Amount = d.Amount
	existing.DueDate = d.DueDate
	s.debts[d.ID] = existing
	return nil
}

func (s *Store) SetDebtStatus(_ context.Context, userID, id int64, status core.DebtStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.debts[id]
	if !ok || existing.UserID != userID {
		return core.ErrNotFound
	}
	existing.Status = status
	s.debts[id] = existing
	return nil
}

func (s *Store) DeleteDebt(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.debts[id]
	if !ok || existing.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.debts, id)
	return nil
}
