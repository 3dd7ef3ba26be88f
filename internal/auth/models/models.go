package models

// UserInfo represents the identity asserted by a verified ID token
type UserInfo struct {
	ID            string `json:"sub" yaml:"sub"`
	Email         string `json:"email,omitempty" yaml:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty" yaml:"email_verified,omitempty"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Picture       string `json:"picture,omitempty" yaml:"picture,omitempty"`
}

// LoginResult is the outcome of a successful login attempt
type LoginResult struct {
	IDToken string `json:"id_token" yaml:"id_token"`
	// User is nil unless the ID token was verified
	User *UserInfo `json:"user,omitempty" yaml:"user,omitempty"`
}

// CallbackResult holds what was parsed from the browser redirect
type CallbackResult struct {
	RawQuery string
	Code     string
	// Error is the provider's error parameter, e.g. access_denied
	Error string
}
