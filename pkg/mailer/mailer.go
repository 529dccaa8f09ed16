package mailer

import (
	"context"
	"errors"
)

// Mailer validates messages before handing them to a Sender.
type Mailer struct {
	sender Sender
	config Config
}

// New creates a new Mailer with the given sender.
func New(sender Sender, cfg Config) *Mailer {
	return &Mailer{
		sender: sender,
		config: cfg,
	}
}

// Send validates and delivers an email. The configured sender address and
// reply-to fill in fields the message leaves empty.
func (m *Mailer) Send(ctx context.Context, email *Email) error {
	if len(email.Recipients()) == 0 {
		return ErrNoRecipient
	}
	if email.Subject == "" {
		return ErrNoSubject
	}
	if email.Text == "" && email.HTML == "" {
		return ErrNoContent
	}

	if email.From == "" && m.config.SenderEmail != "" {
		email.From = m.config.From()
	}
	if email.ReplyTo == "" {
		email.ReplyTo = m.config.ReplyTo
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	return nil
}
