package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"moncash/internal/core"
	"moncash/internal/store"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Repository implements the store ports over database/sql. The SQL dialect
// differences between SQLite and MySQL are confined to the migration files;
// the queries themselves run unchanged on both drivers.
type Repository struct {
	db      *sql.DB
	dialect string
}

var _ store.Repositories = (*Repository)(nil)

// NewSQLite opens (creating if needed) a SQLite database at dbPath and runs
// the embedded migrations.
func NewSQLite(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", core.ErrStoreUnavailable)
	}

	if err := runSQLiteMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, dialect: "sqlite"}, nil
}

// NewMySQL connects to MySQL using the given DSN (parseTime is not required,
// dates are stored as strings) and runs the embedded migrations.
func NewMySQL(dsn string) (*Repository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", core.ErrStoreUnavailable)
	}

	if err := runMySQLMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, dialect: "mysql"}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// isDuplicate detects a unique-constraint violation without depending on
// driver-specific error types. SQLite reports "UNIQUE constraint failed",
// MySQL "Error 1062 ... Duplicate entry".
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}

// nullable maps the empty string to NULL so optional columns round-trip
// cleanly and `date IS NULL` filters work.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *Repository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password, phone) VALUES (?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, nullable(u.Phone))
	if err != nil {
		if isDuplicate(err) {
			return core.User{}, core.ErrDuplicateEmail
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}
	u.ID = id

	slog.InfoContext(ctx, "user created", "user_id", id, "email", u.Email)
	return u, nil
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password, phone FROM users WHERE email = ?`, email))
}

func (r *Repository) UserByID(ctx context.Context, id int64) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password, phone FROM users WHERE id = ?`, id))
}

func (r *Repository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	var phone sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &phone)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Phone = phone.String
	return u, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, id int64, name, email, phone string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, phone = ? WHERE id = ?`,
		name, email, nullable(phone), id)
	if err != nil {
		if isDuplicate(err) {
			return core.ErrDuplicateEmail
		}
		return fmt.Errorf("update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile rows: %w", err)
	}
	if n == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID int64, dr *core.DateRange) ([]core.Transaction, error) {
	query := `SELECT id, user_id, type, amount_cents, description, category, date
	          FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if dr != nil {
		// Undated rows always pass a range filter; listing is deliberately
		// more inclusive than the summary.
		query += ` AND (date >= ? AND date <= ? OR date IS NULL)`
		args = append(args, dr.Start.String(), dr.End.String())
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		var t core.Transaction
		var desc, cat, date sql.NullString
		if err := rows.Scan(&t.ID, &t.UserID, &t.Kind, &t.Amount.Cents, &desc, &cat, &date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Description = desc.String
		t.Category = cat.String
		if t.Date, err = core.ParseDate(date.String); err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", date.String, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, type, amount_cents, description, category, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Kind, t.Amount.Cents, nullable(t.Description), nullable(t.Category), nullable(t.Date.String()))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "transaction saved",
		"transaction_id", id,
		"user_id", t.UserID,
		"type", t.Kind,
		"amount_cents", t.Amount.Cents)
	return t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, amount_cents = ?, description = ?, category = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		t.Kind, t.Amount.Cents, nullable(t.Description), nullable(t.Category), nullable(t.Date.String()),
		t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) Summary(ctx context.Context, userID int64, dr *core.DateRange) (core.Summary, error) {
	query := `SELECT
	            COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
	            COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
	          FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if dr != nil {
		// Note: no `OR date IS NULL` here. The summary filter excludes
		// undated rows even though listing includes them; the asymmetry
		// with ListTransactions is intentional.
		query += ` AND date >= ? AND date <= ?`
		args = append(args, dr.Start.String(), dr.End.String())
	}

	var s core.Summary
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.Income.Cents, &s.Expense.Cents); err != nil {
		return core.Summary{}, fmt.Errorf("summarize transactions: %w", err)
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s, nil
}

func (r *Repository) ListDebts(ctx context.Context, userID int64) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, type, name, amount_cents, due_date, status
		 FROM debts WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	out := make([]core.Debt, 0)
	for rows.Next() {
		var d core.Debt
		var due sql.NullString
		if err := rows.Scan(&d.ID, &d.UserID, &d.Kind, &d.Name, &d.Amount.Cents, &due, &d.Status); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		if d.DueDate, err = core.ParseDate(due.String); err != nil {
			return nil, fmt.Errorf("parse debt due date %q: %w", due.String, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repository) AddDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO debts (user_id, type, name, amount_cents, due_date, status)
		 VALUES (?, ?, ?, ?, ?, 'pending')`,
		d.UserID, d.Kind, d.Name, d.Amount.Cents, nullable(d.DueDate.String()))
	if err != nil {
		return core.Debt{}, fmt.Errorf("insert debt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Debt{}, fmt.Errorf("debt insert id: %w", err)
	}
	d.ID = id
	d.Status = core.StatusPending

	slog.InfoContext(ctx, "debt saved",
		"debt_id", id,
		"user_id", d.UserID,
		"type", d.Kind,
		"counterparty", d.Name)
	return d, nil
}

func (r *Repository) UpdateDebt(ctx context.Context, d core.Debt) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE debts SET type = ?, name = ?, amount_cents = ?, due_date = ?
		 WHERE id = ? AND user_id = ?`,
		d.Kind, d.Name, d.Amount.Cents, nullable(d.DueDate.String()), d.ID, d.UserID)
	if err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) SetDebtStatus(ctx context.Context, userID, id int64, status core.DebtStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE debts SET status = ? WHERE id = ? AND user_id = ?`, status, id, userID)
	if err != nil {
		return fmt.Errorf("update debt status: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) DeleteDebt(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM debts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	return requireAffected(res)
}

// requireAffected surfaces ownership-scoped mutations that matched no row;
// the handlers map the zero-rows case to 404. An update that rewrites a row
// with identical values must still count as matched, so the MySQL DSN is
// required to set clientFoundRows=true (config.Validate enforces it).
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
