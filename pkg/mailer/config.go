package mailer

// Provider names accepted in MAILER_PROVIDER.
const (
	ProviderGmail  = "gmail"
	ProviderResend = "resend"
)

// Config holds provider-independent mailer configuration.
type Config struct {
	Provider    string `env:"MAILER_PROVIDER" envDefault:"gmail"`
	SenderEmail string `env:"MAILER_FROM_EMAIL"`
	SenderName  string `env:"MAILER_FROM_NAME" envDefault:"Justus"`
	ReplyTo     string `env:"MAILER_REPLY_TO"`
}

// From returns the configured sender in RFC 5322 address format.
func (c Config) From() string {
	return Recipient(c.SenderName, c.SenderEmail)
}
