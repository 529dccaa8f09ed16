package oauth

// GoogleConfig holds the OAuth client that issued the stored refresh token.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:","`
}
