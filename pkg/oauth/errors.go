package oauth

import "errors"

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("oauth: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("oauth: missing client secret")

	// ErrEmptyRefreshToken is returned when asked to refresh an empty token.
	ErrEmptyRefreshToken = errors.New("oauth: empty refresh token")

	// ErrTokenExchange is returned when the provider rejects the refresh token
	// or cannot be reached.
	ErrTokenExchange = errors.New("oauth: refresh token exchange failed")

	// ErrNoAccessToken is returned when the provider answers without an access token.
	ErrNoAccessToken = errors.New("oauth: provider returned no access token")
)
