package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"

	DebtOwed   DebtKind = "debt"
	Receivable DebtKind = "receivable"

	StatusPending DebtStatus = "pending"
	StatusPaid    DebtStatus = "paid"
)

type (
	TransactionKind string
	DebtKind        string
	DebtStatus      string

	// Date is a calendar day. The zero value means "undated", which the
	// ledger treats as a first-class state (see DateRange semantics below).
	Date struct {
		time.Time
	}

	// DateRange is an inclusive [Start, End] filter over calendar days.
	DateRange struct {
		Start Date
		End   Date
	}

	User struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		PasswordHash string `json:"-"`
		Phone        string `json:"phone"`
	}

	Transaction struct {
		ID          int64           `json:"id"`
		UserID      int64           `json:"user_id"`
		Kind        TransactionKind `json:"type"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Date        Date            `json:"date"`
	}

	Debt struct {
		ID      int64      `json:"id"`
		UserID  int64      `json:"user_id"`
		Kind    DebtKind   `json:"type"`
		Name    string     `json:"name"`
		Amount  Money      `json:"amount"`
		DueDate Date       `json:"due_date"`
		Status  DebtStatus `json:"status"`
	}
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNotFound           = errors.New("record not found or not owned by caller")
	ErrInvalidStatus      = errors.New("invalid debt status")
	ErrDelivery           = errors.New("report delivery failed")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

func (k TransactionKind) IsValid() bool {
	return k == Income || k == Expense
}

func (k DebtKind) IsValid() bool {
	return k == DebtOwed || k == Receivable
}

func (s DebtStatus) IsValid() bool {
	return s == StatusPending || s == StatusPaid
}

// Validate checks the closed kind enumeration. Amounts are deliberately not
// validated here: the backends accept zero and negative amounts, the sign
// convention is enforced by clients only.
func (t Transaction) Validate() error {
	if !t.Kind.IsValid() {
		return ErrInvalidInput
	}
	return nil
}

func (d Debt) Validate() error {
	if !d.Kind.IsValid() {
		return ErrInvalidInput
	}
	if strings.TrimSpace(d.Name) == "" {
		return ErrInvalidInput
	}
	return nil
}

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day (server clock).
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string. The empty string parses to the
// undated zero value.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidInput
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD, or "" when undated.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// ContainsDated reports whether a dated day falls inside the range.
// Undated days never match; use ContainsOrUndated for the listing filter.
func (r DateRange) ContainsDated(d Date) bool {
	if d.IsZero() {
		return false
	}
	return !d.Before(r.Start) && !d.After(r.End)
}

// ContainsOrUndated is the listing filter: a range always admits undated
// rows in addition to rows inside [Start, End]. This mirrors the stored
// query `(date >= ? AND date <= ? OR date IS NULL)`.
func (r DateRange) ContainsOrUndated(d Date) bool {
	if d.IsZero() {
		return true
	}
	return r.ContainsDated(d)
}

// MonthRange returns the inclusive range covering one calendar month.
func MonthRange(year, month int) DateRange {
	start := NewDate(year, month, 1)
	end := Date{Time: start.AddDate(0, 1, -1)}
	return DateRange{Start: start, End: end}
}
