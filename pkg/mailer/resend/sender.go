package resend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/resend/resend-go/v3"

	"github.com/olmmcc/emaild/pkg/mailer"
)

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	client *resend.Client
}

// New creates a new Resend sender.
func New(cfg Config) (*Sender, error) {
	client := resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("resend: invalid base URL: %w", err)
		}
		client.BaseURL = u
	}
	return &Sender{client: client}, nil
}

// Authorize implements mailer.Authorizer. Resend authenticates with its
// API key, so the refresh token only gates the run.
func (s *Sender) Authorize(context.Context, string) (mailer.Sender, error) {
	return s, nil
}

// Send implements mailer.Sender. Resend requires a To address; blind
// copies to subscribers are addressed to the sender itself.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	to := email.To
	if len(to) == 0 && email.From != "" {
		to = []string{email.From}
	}

	req := &resend.SendEmailRequest{
		From:    email.From,
		To:      to,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
		Cc:      email.CC,
		Bcc:     email.BCC,
		Headers: email.Headers,
	}

	if len(email.Tags) > 0 {
		req.Tags = convertTags(email.Tags)
	}

	_, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}

	return nil
}

func convertTags(tags mailer.Tags) []resend.Tag {
	result := make([]resend.Tag, 0, len(tags))
	for name, value := range tags {
		result = append(result, resend.Tag{
			Name:  name,
			Value: tagValue(value),
		})
	}
	return result
}

// tagValue converts any value to a string for Resend's tag API.
// Presence-only tags (struct{}{}) become "true".
func tagValue(v any) string {
	switch val := v.(type) {
	case nil, struct{}:
		return "true"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
