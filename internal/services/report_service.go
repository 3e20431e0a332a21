package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"moncash/internal/amqp"
	"moncash/internal/core"
	"moncash/internal/report"
	"moncash/internal/store"
)

// ReportPublisher enqueues report requests for asynchronous delivery.
// *amqp.Client satisfies it; a nil publisher means reports are rendered
// and mailed inline on the request path.
type ReportPublisher interface {
	PublishReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error
}

// ReportService renders ledger reports and dispatches them by email,
// either inline or through the report worker queue.
type ReportService struct {
	users     store.UserRepository
	txs       store.TransactionRepository
	debts     store.DebtRepository
	renderer  *report.Renderer
	mailer    report.Mailer
	publisher ReportPublisher
}

func NewReportService(repos store.Repositories, renderer *report.Renderer, mailer report.Mailer, publisher ReportPublisher) *ReportService {
	return &ReportService{
		users:     repos,
		txs:       repos,
		debts:     repos,
		renderer:  renderer,
		mailer:    mailer,
		publisher: publisher,
	}
}

// MonthlyPreview renders the monthly recap without sending it.
func (s *ReportService) MonthlyPreview(ctx context.Context, userID int64, month, year int) (report.Rendered, error) {
	return s.renderMonthly(ctx, userID, month, year)
}

// DebtPreview renders the counterparty recap without sending it.
func (s *ReportService) DebtPreview(ctx context.Context, userID int64, counterparty string) (report.Rendered, error) {
	return s.renderDebts(ctx, userID, counterparty)
}

// SendMonthly emails the monthly recap to the user's own address. With a
// publisher configured the request is queued and the worker delivers it;
// otherwise delivery happens inline.
func (s *ReportService) SendMonthly(ctx context.Context, userID int64, month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month out of range", core.ErrInvalidInput)
	}
	msg := amqp.NewMonthlyReportRequest(userID, month, year)
	if s.publisher != nil {
		return s.publisher.PublishReportRequest(ctx, msg)
	}
	return s.Deliver(ctx, msg)
}

// SendDebts emails the recap of the user's debts toward one counterparty.
func (s *ReportService) SendDebts(ctx context.Context, userID int64, counterparty string) error {
	counterparty = strings.TrimSpace(counterparty)
	if counterparty == "" {
		return fmt.Errorf("%w: counterparty is required", core.ErrInvalidInput)
	}
	msg := amqp.NewDebtReportRequest(userID, counterparty)
	if s.publisher != nil {
		return s.publisher.PublishReportRequest(ctx, msg)
	}
	return s.Deliver(ctx, msg)
}

// Deliver renders the requested report and mails it. The worker calls this
// for every dequeued request; the API server calls it directly when no
// queue is configured.
func (s *ReportService) Deliver(ctx context.Context, msg *amqp.ReportRequestMessage) error {
	user, err := s.users.UserByID(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	var rendered report.Rendered
	switch msg.Kind {
	case amqp.ReportKindMonthly:
		rendered, err = s.renderMonthly(ctx, msg.UserID, msg.Month, msg.Year)
	case amqp.ReportKindDebts:
		rendered, err = s.renderDebts(ctx, msg.UserID, msg.Counterparty)
	default:
		return fmt.Errorf("%w: unknown report kind %q", core.ErrInvalidInput, msg.Kind)
	}
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, user.Email, rendered); err != nil {
		return err
	}

	slog.InfoContext(ctx, "report delivered",
		"user_id", msg.UserID,
		"kind", msg.Kind,
		"to", user.Email)
	return nil
}

// renderMonthly fetches one calendar month of transactions and renders the
// recap. The table lists undated rows alongside the month's dated ones;
// the totals count dated rows only, matching the summary endpoint.
func (s *ReportService) renderMonthly(ctx context.Context, userID int64, month, year int) (report.Rendered, error) {
	if month < 1 || month > 12 {
		return report.Rendered{}, fmt.Errorf("%w: month out of range", core.ErrInvalidInput)
	}
	r := core.MonthRange(year, month)
	txs, err := s.txs.ListTransactions(ctx, userID, &r)
	if err != nil {
		return report.Rendered{}, fmt.Errorf("list transactions: %w", err)
	}
	summary := core.Summarize(txs, &r)
	return s.renderer.Monthly(month, year, summary, txs)
}

// renderDebts fetches the user's debts toward one counterparty and renders
// the recap. Matching is exact on the stored name.
func (s *ReportService) renderDebts(ctx context.Context, userID int64, counterparty string) (report.Rendered, error) {
	counterparty = strings.TrimSpace(counterparty)
	if counterparty == "" {
		return report.Rendered{}, fmt.Errorf("%w: counterparty is required", core.ErrInvalidInput)
	}
	all, err := s.debts.ListDebts(ctx, userID)
	if err != nil {
		return report.Rendered{}, fmt.Errorf("list debts: %w", err)
	}
	matched := make([]core.Debt, 0, len(all))
	for _, d := range all {
		if d.Name == counterparty {
			matched = append(matched, d)
		}
	}
	totals := core.ComputeDebtTotals(matched)
	return s.renderer.Debts(counterparty, totals, matched)
}
