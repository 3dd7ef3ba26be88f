package auth

import (
	"errors"
	"fmt"
)

// Every failure ends the current login attempt; none are retried here.
var (
	// Configuration errors
	ErrConfigMissing = errors.New("missing required configuration")
	ErrConfigEmpty   = errors.New("empty required configuration")
	ErrConfigInvalid = errors.New("invalid configuration")

	// Loopback and browser errors
	ErrBindFailure     = errors.New("could not bind loopback listener")
	ErrLaunchFailure   = errors.New("could not open browser")
	ErrCallbackIO      = errors.New("loopback callback failed")
	ErrCallbackTimeout = errors.New("timed out waiting for browser callback")

	ErrMissingAuthorizationCode = errors.New("no authorization code received in redirect")

	// Token endpoint errors
	ErrNetwork           = errors.New("token endpoint request failed")
	ErrTokenEndpoint     = errors.New("token endpoint error")
	ErrMalformedResponse = errors.New("malformed token endpoint response")
	ErrMissingIDToken    = errors.New("token endpoint response has no id_token")

	ErrIDTokenInvalid = errors.New("ID token verification failed")
)

// TokenEndpointError is returned when the provider rejects the code exchange.
type TokenEndpointError struct {
	Status int
	Body   string
}

func (e *TokenEndpointError) Error() string {
	return fmt.Sprintf("%s %d: %s", ErrTokenEndpoint, e.Status, e.Body)
}

func (e *TokenEndpointError) Is(target error) bool { return target == ErrTokenEndpoint }

// MissingIDTokenError is returned when a successful response lacks an id_token.
type MissingIDTokenError struct {
	Body string
}

func (e *MissingIDTokenError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingIDToken, e.Body)
}

func (e *MissingIDTokenError) Is(target error) bool { return target == ErrMissingIDToken }
