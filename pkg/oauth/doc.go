// Package oauth exchanges stored OAuth2 refresh tokens for access tokens.
//
// The job never runs an interactive authorization flow. An administrator
// authorizes the Gmail account once, the resulting refresh token lives in
// the admin table, and every run trades it for a short-lived access token
// through [GoogleRefresher]:
//
//	refresher, err := oauth.NewGoogleRefresher(oauth.GoogleConfig{
//		ClientID:     os.Getenv("GOOGLE_OAUTH_CLIENT_ID"),
//		ClientSecret: os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET"),
//	})
//	if err != nil {
//		return err
//	}
//
//	token, err := refresher.AccessToken(ctx, storedRefreshToken)
//	if err != nil {
//		// errors.Is(err, oauth.ErrTokenExchange)
//	}
//
// [WithHTTPClient] and [WithEndpoint] let tests point the exchange at an
// httptest server.
package oauth
