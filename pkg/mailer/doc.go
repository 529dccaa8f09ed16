// Package mailer defines the provider-independent email types and the
// Mailer that validates messages before a provider delivers them.
//
// Providers live in subpackages: gmail sends through the Gmail API with an
// access token obtained from a stored OAuth refresh token, resend sends
// through the Resend API. Both implement Authorizer, which turns a refresh
// token into a ready Sender:
//
//	sender, err := transport.Authorize(ctx, refreshToken)
//	if err != nil {
//		return err
//	}
//	m := mailer.New(sender, cfg)
//	err = m.Send(ctx, &mailer.Email{
//		BCC:     subscribers,
//		Subject: "Children's Choir Calendar",
//		Text:    body,
//	})
//
// Send returns ErrNoRecipient, ErrNoSubject or ErrNoContent for incomplete
// messages, and wraps provider failures with ErrSendFailed.
package mailer
