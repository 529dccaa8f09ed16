package resend

// Config holds Resend email provider configuration.
type Config struct {
	APIKey  string `env:"RESEND_API_KEY"`
	BaseURL string `env:"RESEND_BASE_URL"`
}
