package gmail

// Config holds Gmail API settings.
type Config struct {
	BaseURL string `env:"GMAIL_API_URL" envDefault:"https://gmail.googleapis.com"`
	UserID  string `env:"GMAIL_USER_ID" envDefault:"me"`
}
