package infra

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/gunnas32/QR-Stock/internal/config"
	"github.com/gunnas32/QR-Stock/internal/model"
)

// Mailer delivers low-stock alerts over SMTP.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

func (m *Mailer) Name() string { return "smtp" }

// Notify sends the alert mail to the item's configured recipient.
func (m *Mailer) Notify(_ context.Context, intent model.AlertIntent) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{intent.Recipient}
	e.Subject = fmt.Sprintf("Low stock: %s (%d left)", intent.ItemName, intent.Quantity)
	e.Text = []byte(fmt.Sprintf(
		"Item %q (code %s) dropped to %d, at or below its alert threshold of %d.\n\n"+
			"Fired at %s.\n",
		intent.ItemName, intent.ItemCode, intent.Quantity, intent.Threshold,
		intent.FiredAt.Format("2006-01-02 15:04:05 MST"),
	))

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", intent.Recipient, err)
	}
	return nil
}
