package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultMaxRetries bounds refresh attempts on transient failures.
	DefaultMaxRetries = 3
	// DefaultInitialDelay is the first backoff delay; it doubles per attempt.
	DefaultInitialDelay = 1 * time.Second
	// RequestTimeout bounds each token endpoint call.
	RequestTimeout = 10 * time.Second
)

// ErrMissingCredentials means client id, secret or refresh token was empty.
// This is a configuration problem and is never retried.
var ErrMissingCredentials = errors.New("client_id, client_secret and refresh_token must all be set")

// Refresher exchanges a long-lived refresh token for a short-lived access
// token, retrying transient failures with exponential backoff.
type Refresher struct {
	MaxRetries   int
	InitialDelay time.Duration
	// TokenURL overrides the Strava token endpoint (tests).
	TokenURL string

	clientID     string
	clientSecret string
}

// NewRefresher creates a Refresher with default retry policy.
func NewRefresher(clientID, clientSecret string) *Refresher {
	return &Refresher{
		MaxRetries:   DefaultMaxRetries,
		InitialDelay: DefaultInitialDelay,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Refresh performs the refresh_token grant and returns the new access token
// and the (possibly rotated) refresh token. Persisting the rotated token is
// the caller's responsibility.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error) {
	if r.clientID == "" || r.clientSecret == "" || refreshToken == "" {
		return "", "", ErrMissingCredentials
	}

	cfg := NewOAuthConfig(r.clientID, r.clientSecret, "", r.TokenURL)

	// The oauth2 transport picks its HTTP client out of the context.
	hc := &http.Client{Timeout: RequestTimeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)

	delay := r.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= r.MaxRetries; attempt++ {
		src := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
		token, err := src.Token()
		if err == nil {
			newRefreshToken = token.RefreshToken
			if newRefreshToken == "" {
				newRefreshToken = refreshToken
			}
			return token.AccessToken, newRefreshToken, nil
		}

		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			lastErr = fmt.Errorf("token endpoint returned %d: %s", retrieveErr.Response.StatusCode, string(retrieveErr.Body))
		} else {
			lastErr = fmt.Errorf("token request failed: %w", err)
		}

		if attempt < r.MaxRetries {
			log.Printf("token refresh attempt %d failed (%v), retrying in %s", attempt, lastErr, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", "", ctx.Err()
			}
			delay *= 2
		}
	}

	return "", "", fmt.Errorf("refreshing access token after %d attempts: %w", r.MaxRetries, lastErr)
}
