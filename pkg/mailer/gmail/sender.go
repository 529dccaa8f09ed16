package gmail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/olmmcc/emaild/pkg/mailer"
	"github.com/olmmcc/emaild/pkg/oauth"
)

// Transport authorizes Gmail senders from a stored refresh token.
type Transport struct {
	refresher oauth.Refresher
	config    Config
}

// New creates a Gmail transport.
func New(refresher oauth.Refresher, cfg Config) *Transport {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://gmail.googleapis.com"
	}
	if cfg.UserID == "" {
		cfg.UserID = "me"
	}
	return &Transport{refresher: refresher, config: cfg}
}

// Authorize implements mailer.Authorizer.
func (t *Transport) Authorize(ctx context.Context, refreshToken string) (mailer.Sender, error) {
	tok, err := t.refresher.AccessToken(ctx, refreshToken)
	if err != nil {
		return nil, errors.Join(mailer.ErrAuthorizeFailed, err)
	}
	return &Sender{
		client: t.refresher.Client(ctx, tok),
		config: t.config,
	}, nil
}

// Sender implements mailer.Sender using the Gmail users.messages.send API.
type Sender struct {
	client *http.Client
	config Config
}

// NewSender creates a sender around an already-authorized HTTP client.
func NewSender(client *http.Client, cfg Config) *Sender {
	return &Sender{client: client, config: cfg}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	raw, err := buildRaw(email)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		return fmt.Errorf("gmail: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/gmail/v1/users/%s/messages/send", s.config.BaseURL, url.PathEscape(s.config.UserID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("gmail: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gmail: failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return errors.Join(ErrRequestFailed, fmt.Errorf("status=%d body=%s", resp.StatusCode, body))
	}

	return nil
}
