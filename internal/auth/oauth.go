package auth

import (
	"golang.org/x/oauth2"
)

const (
	// Strava OAuth endpoints
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"
)

// Scopes required to read all activities (Strava uses comma-separated scopes).
var Scopes = []string{
	"read,activity:read_all",
}

// NewOAuthConfig builds the oauth2 config for the given app credentials.
// tokenURL is normally TokenURL; tests point it at a local server.
func NewOAuthConfig(clientID, clientSecret, redirectURL, tokenURL string) *oauth2.Config {
	if tokenURL == "" {
		tokenURL = TokenURL
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  AuthURL,
			TokenURL: tokenURL,
			// Strava wants client_id/client_secret as POST params, not
			// basic auth.
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirectURL,
		Scopes:      Scopes,
	}
}
