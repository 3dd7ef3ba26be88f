package constants

const (
	// Environment variables read by the per-attempt resolver
	EnvClientID     = "OAUTH_CLIENT_ID"
	EnvClientSecret = "OAUTH_CLIENT_SECRET"
	EnvRedirectURI  = "OAUTH_REDIRECT_URI"

	// Names used by the desktop build, accepted as fallbacks
	LegacyEnvClientID     = "GOOGLE_OAUTH_CLIENT_ID"
	LegacyEnvClientSecret = "GOOGLE_OAUTH_CLIENT_SECRET"
	LegacyEnvRedirectURI  = "GOOGLE_OAUTH_REDIRECT_URI"

	// DefaultRedirectURI is used when no redirect URI is configured
	DefaultRedirectURI = "http://localhost"

	// GoogleAuthURL is Google's v2 authorization endpoint
	GoogleAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"

	// GoogleIssuer is the OIDC issuer of Google ID tokens
	GoogleIssuer = "https://accounts.google.com"

	ResponseTypeCode           = "code"
	GrantTypeAuthorizationCode = "authorization_code"

	// Callback query parameters
	CodeQueryParam  = "code"
	ErrorQueryParam = "error"

	// IDTokenField is the token endpoint response field returned to the caller
	IDTokenField = "id_token"
)

// Pages served to the browser by the loopback listener
const (
	SuccessPage        = "Login successful. You can close this window."
	FailurePage        = "Login failed: no authorization code was received. You can close this window and try again."
	AlreadyHandledPage = "This login request has already been handled. You can close this window."
)

// DefaultScopes requested from the provider, in order
var DefaultScopes = []string{"openid", "email", "profile"}
