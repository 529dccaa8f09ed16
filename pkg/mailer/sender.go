package mailer

import "context"

// Sender defines the minimal interface that email providers must implement.
// It accepts a fully-prepared Email and handles the actual delivery.
type Sender interface {
	// Send delivers an email message.
	// Returns an error if delivery fails.
	Send(ctx context.Context, email *Email) error
}

// Authorizer exchanges a stored OAuth refresh token for a Sender bound to
// a fresh access token.
type Authorizer interface {
	Authorize(ctx context.Context, refreshToken string) (Sender, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, email *Email) error

func (f SenderFunc) Send(ctx context.Context, email *Email) error {
	return f(ctx, email)
}
