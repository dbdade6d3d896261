package alert

import (
	"context"
	"log/slog"

	"github.com/oryndra/jobradar/internal/model"
)

// Ensure LogMailer implements model.Mailer.
var _ model.Mailer = (*LogMailer)(nil)

// LogMailer writes the alert to the logger instead of sending it. Used when
// no SMTP account is configured, and in tests.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer returns a mailer that logs instead of sending.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the subject and body size. It never fails.
func (m *LogMailer) Send(_ context.Context, subject, htmlBody string) error {
	m.logger.Info("alert (log mailer)", "subject", subject, "body_bytes", len(htmlBody))
	return nil
}
