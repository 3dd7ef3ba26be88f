package auth

import (
	"fmt"

	"golang.org/x/oauth2"
)

// BrowserOpener opens a URL in the user's browser
type BrowserOpener func(url string) error

// AuthorizationRequest is the provider URL the user is sent to
type AuthorizationRequest struct {
	URL string
}

// NewAuthorizationRequest builds the authorization URL for cfg on endpoint with
// client_id, redirect_uri, response_type=code and scope=openid email profile.
func NewAuthorizationRequest(cfg OAuthConfig, endpoint oauth2.Endpoint) AuthorizationRequest {
	// no state or PKCE parameters, the redirect only reaches this process
	return AuthorizationRequest{URL: cfg.oauth2Config(endpoint).AuthCodeURL("")}
}

// Launch hands the authorization URL to open. It does not wait for the user.
func Launch(req AuthorizationRequest, open BrowserOpener) error {
	if open == nil {
		return fmt.Errorf("%w: no browser opener configured", ErrLaunchFailure)
	}
	if err := open(req.URL); err != nil {
		return fmt.Errorf("%w: %w", ErrLaunchFailure, err)
	}
	return nil
}
