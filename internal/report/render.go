// Package report renders emailed summaries of a user's ledger: the monthly
// income/expense recap and the per-counterparty debt recap. Rendering is a
// pure transformation of ledger rows; dispatch happens through the Mailer.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"moncash/internal/core"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Rendered is a report ready for delivery.
type Rendered struct {
	Subject string
	HTML    string
}

// MonthlyData feeds the monthly recap template.
type MonthlyData struct {
	MonthName    string
	Year         int
	Summary      core.Summary
	Transactions []core.Transaction
	GeneratedAt  string
}

// DebtData feeds the counterparty recap template.
type DebtData struct {
	Counterparty string
	Totals       core.DebtTotals
	Debts        []core.Debt
	GeneratedAt  string
}

type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse report templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Monthly renders the recap for one calendar month of transactions.
func (r *Renderer) Monthly(month, year int, summary core.Summary, txs []core.Transaction) (Rendered, error) {
	data := MonthlyData{
		MonthName:    time.Month(month).String(),
		Year:         year,
		Summary:      summary,
		Transactions: txs,
		GeneratedAt:  time.Now().Format("2006-01-02"),
	}
	html, err := r.execute("monthly.html", data)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{
		Subject: fmt.Sprintf("Monthly Recap %s %d - MonCash", data.MonthName, data.Year),
		HTML:    html,
	}, nil
}

// Debts renders the recap of a user's debts toward one counterparty. Paid
// rows stay in the table and the totals; only the unpaid figures exclude
// them.
func (r *Renderer) Debts(counterparty string, totals core.DebtTotals, debts []core.Debt) (Rendered, error) {
	data := DebtData{
		Counterparty: counterparty,
		Totals:       totals,
		Debts:        debts,
		GeneratedAt:  time.Now().Format("2006-01-02"),
	}
	html, err := r.execute("debts.html", data)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{
		Subject: fmt.Sprintf("Debt Recap - %s - MonCash", counterparty),
		HTML:    html,
	}, nil
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
