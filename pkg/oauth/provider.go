package oauth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// Refresher trades a long-lived refresh token for a short-lived access token
// and builds HTTP clients that present it.
type Refresher interface {
	// AccessToken exchanges refreshToken for a fresh access token.
	AccessToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)

	// Client returns an HTTP client that authorizes requests with token.
	Client(ctx context.Context, token *oauth2.Token) *http.Client
}
