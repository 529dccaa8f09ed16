package mailer

import "fmt"

// Tags represents email tags/categories that can be either presence-only
// (using struct{}{}) or key-value pairs (using string values).
// Resend turns presence-only tags into name="true"; Gmail ignores tags.
type Tags map[string]any

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email represents a fully-prepared email message ready for sending.
// Bulk announcements put subscribers in BCC so addresses stay private.
type Email struct {
	Headers map[string]string // Custom headers
	Tags    Tags              // Provider-specific tags/categories
	Subject string
	Text    string // Plain text body
	HTML    string // Optional HTML alternative
	From    string // Override default sender
	ReplyTo string
	To      []string
	CC      []string
	BCC     []string
}

// Recipients returns every address the message is delivered to.
func (e *Email) Recipients() []string {
	out := make([]string, 0, len(e.To)+len(e.CC)+len(e.BCC))
	out = append(out, e.To...)
	out = append(out, e.CC...)
	return append(out, e.BCC...)
}
