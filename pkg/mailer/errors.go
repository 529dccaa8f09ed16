package mailer

import "errors"

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("email must have a subject")

	// ErrNoContent indicates neither a text nor an HTML body was provided.
	ErrNoContent = errors.New("email must have content")

	// ErrSendFailed indicates email sending failed.
	ErrSendFailed = errors.New("failed to send email")

	// ErrAuthorizeFailed indicates the transport could not obtain credentials.
	ErrAuthorizeFailed = errors.New("failed to authorize mail transport")

	// ErrUnknownProvider indicates an unsupported MAILER_PROVIDER value.
	ErrUnknownProvider = errors.New("unknown mail provider")
)
