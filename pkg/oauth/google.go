package oauth

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
)

// GmailSendScope allows sending mail on the account's behalf.
const GmailSendScope = "https://www.googleapis.com/auth/gmail.send"

// GoogleDefaultScopes returns the scopes the stored refresh token is expected to carry.
func GoogleDefaultScopes() []string {
	return []string{GmailSendScope}
}

// GoogleRefresher implements Refresher against Google's token endpoint.
type GoogleRefresher struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewGoogleRefresher creates a refresher for the given OAuth client.
// Returns an error if ClientID or ClientSecret is empty.
func NewGoogleRefresher(cfg GoogleConfig, opts ...Option) (*GoogleRefresher, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = GoogleDefaultScopes()
	}

	endpoint := googleOAuth.Endpoint
	if o.endpoint != nil {
		endpoint = *o.endpoint
	}

	return &GoogleRefresher{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		httpClient: o.httpClient,
	}, nil
}

// AccessToken exchanges refreshToken for an access token. The refresh
// token is never rotated in storage; Google keeps it valid until revoked.
func (p *GoogleRefresher) AccessToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, ErrEmptyRefreshToken
	}

	ctx = p.contextWithHTTPClient(ctx)
	tok, err := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, errors.Join(ErrTokenExchange, err)
	}
	if tok.AccessToken == "" {
		return nil, ErrNoAccessToken
	}
	return tok, nil
}

// Client returns an HTTP client that authorizes requests with token.
func (p *GoogleRefresher) Client(ctx context.Context, token *oauth2.Token) *http.Client {
	ctx = p.contextWithHTTPClient(ctx)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
}

func (p *GoogleRefresher) contextWithHTTPClient(ctx context.Context) context.Context {
	if p.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}
	return ctx
}
