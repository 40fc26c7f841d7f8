// Package auth implements the Google OAuth relay: it builds the consent
// URL and exchanges an authorization code for the user's profile. It is
// a thin externally-facing surface; the ledger and shift engines never
// see any of it.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// ErrNotConfigured is returned when no Google client id is set.
var ErrNotConfigured = errors.New("google oauth client not configured")

// Profile is the user identity returned to the opener window.
type Profile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// Relay holds the OAuth client configuration for the code exchange.
type Relay struct {
	cfg *oauth2.Config
}

// NewRelay builds a relay redirecting back to <appURL>/auth/callback.
func NewRelay(clientID, clientSecret, appURL string) *Relay {
	return &Relay{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  appURL + "/auth/callback",
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Configured reports whether a client id is present.
func (r *Relay) Configured() bool {
	return r.cfg.ClientID != ""
}

// AuthURL returns the Google consent URL, or ErrNotConfigured when the
// client id is missing.
func (r *Relay) AuthURL() (string, error) {
	if !r.Configured() {
		return "", ErrNotConfigured
	}
	return r.cfg.AuthCodeURL("state-token",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// Exchange trades the authorization code for tokens and fetches the
// user's profile from the Google userinfo endpoint.
func (r *Relay) Exchange(ctx context.Context, code string) (*Profile, error) {
	if !r.Configured() {
		return nil, ErrNotConfigured
	}

	tok, err := r.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	svc, err := goauth2.NewService(ctx, option.WithTokenSource(r.cfg.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}

	return &Profile{
		ID:      info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
