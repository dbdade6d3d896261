package alert

import (
	"bytes"
	"context"
	"io"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/oryndra/jobradar/internal/config"
	"github.com/oryndra/jobradar/internal/model"
)

// Ensure SMTPMailer implements model.Mailer.
var _ model.Mailer = (*SMTPMailer)(nil)

// SMTPMailer delivers alert emails over SMTP with STARTTLS.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer returns a mailer for the configured SMTP account.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send builds an HTML MIME message and submits it in one SMTP session.
func (m *SMTPMailer) Send(ctx context.Context, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return &model.DeliveryError{Recipient: m.cfg.To, Err: err}
	}

	var buf bytes.Buffer

	var h gomail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*gomail.Address{{Address: m.cfg.From}})
	h.SetAddressList("To", []*gomail.Address{{Address: m.cfg.To}})
	h.SetSubject(subject)
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})

	w, err := gomail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return &model.DeliveryError{Recipient: m.cfg.To, Err: err}
	}
	if _, err := io.WriteString(w, htmlBody); err != nil {
		w.Close()
		return &model.DeliveryError{Recipient: m.cfg.To, Err: err}
	}
	if err := w.Close(); err != nil {
		return &model.DeliveryError{Recipient: m.cfg.To, Err: err}
	}

	auth := sasl.NewPlainClient("", m.cfg.Username, m.cfg.Password)
	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.From, []string{m.cfg.To}, &buf); err != nil {
		return &model.DeliveryError{Recipient: m.cfg.To, Err: err}
	}
	return nil
}

// SendTestAlert pushes a canned posting through the mailer to verify the
// SMTP integration end to end.
func SendTestAlert(ctx context.Context, mailer model.Mailer) error {
	job := model.Job{
		Company:  "JobRadar Test",
		Title:    "Director of Technology — Integration Verified",
		Location: "Melbourne, Australia",
		URL:      "https://github.com/oryndra/jobradar",
	}
	return mailer.Send(ctx, "JobRadar — test alert", buildBody([]model.Job{job}))
}
