package report

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"moncash/internal/core"
)

// Mailer dispatches a rendered report to a recipient.
type Mailer interface {
	Send(ctx context.Context, to string, r Rendered) error
}

// SMTPMailer delivers reports over SMTP.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

var _ Mailer = (*SMTPMailer)(nil)

// Send delivers the report. Failures map to core.ErrDelivery; the ledger is
// never touched from here.
func (m *SMTPMailer) Send(ctx context.Context, to string, r Rendered) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", r.Subject)
	msg.SetBody("text/html", r.HTML)

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		slog.ErrorContext(ctx, "report email failed", "to", to, "subject", r.Subject, "error", err)
		return fmt.Errorf("%w: %v", core.ErrDelivery, err)
	}

	slog.InfoContext(ctx, "report email sent", "to", to, "subject", r.Subject)
	return nil
}
