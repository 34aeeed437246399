package mailer

import (
	"context"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/warrantyvault/backend/pkg/config"
	pkgerrors "github.com/warrantyvault/backend/pkg/errors"
)

// Message is a plain-text mail ready for delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail through the configured SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender validates the SMTP configuration and builds a sender.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "smtp host required")
	}
	if cfg.Port <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "smtp port required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "smtp from address required")
	}

	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}, nil
}

// Send dials the relay and pushes one message. gomail has no context
// support, so cancellation is checked before the blocking dial.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.To) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient address required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send mail")
	}
	return nil
}
