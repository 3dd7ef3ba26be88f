package auth

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/brizzai/loopback-login/internal/auth/constants"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"golang.org/x/oauth2"
)

// OAuthConfig holds the client credentials and redirect target for one login
// attempt. It is resolved once and passed by value to every later stage.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	// RedirectURI is the configured string, sent to the provider unmodified
	RedirectURI string
	RedirectURL *url.URL
	Host        string
	Port        int
}

// BindAddress is the host:port the loopback listener binds
func (c OAuthConfig) BindAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// String never includes the client secret
func (c OAuthConfig) String() string {
	return fmt.Sprintf("client_id=%s redirect_uri=%s", c.ClientID, c.RedirectURI)
}

// MarshalLogObject lets the config be logged with zap.Object without the secret
func (c OAuthConfig) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("client_id", c.ClientID)
	enc.AddString("redirect_uri", c.RedirectURI)
	enc.AddString("bind_address", c.BindAddress())
	return nil
}

func (c OAuthConfig) oauth2Config(endpoint oauth2.Endpoint) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Endpoint:     endpoint,
		Scopes:       constants.DefaultScopes,
	}
}

// ConfigResolver produces the configuration for a login attempt
type ConfigResolver interface {
	Resolve() (OAuthConfig, error)
}

// Resolver reads the OAuth client configuration from the process environment.
type Resolver struct{}

// NewResolver creates a new Resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

const (
	keyClientID     = "client_id"
	keyClientSecret = "client_secret"
	keyRedirectURI  = "redirect_uri"
)

// Resolve reads the environment afresh. A required value that is absent fails
// with ErrConfigMissing, one that is blank after trimming with ErrConfigEmpty.
func (r *Resolver) Resolve() (OAuthConfig, error) {
	v := viper.New()
	// keep set-but-empty variables visible so they are not reported as missing
	v.AllowEmptyEnv(true)
	bindings := map[string][]string{
		keyClientID:     {constants.EnvClientID, constants.LegacyEnvClientID},
		keyClientSecret: {constants.EnvClientSecret, constants.LegacyEnvClientSecret},
		keyRedirectURI:  {constants.EnvRedirectURI, constants.LegacyEnvRedirectURI},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return OAuthConfig{}, fmt.Errorf("%w: binding %s: %w", ErrConfigInvalid, key, err)
		}
	}

	clientID, err := required(v, keyClientID, constants.EnvClientID)
	if err != nil {
		return OAuthConfig{}, err
	}
	clientSecret, err := required(v, keyClientSecret, constants.EnvClientSecret)
	if err != nil {
		return OAuthConfig{}, err
	}

	redirectURI := constants.DefaultRedirectURI
	if v.IsSet(keyRedirectURI) {
		redirectURI = strings.TrimSpace(v.GetString(keyRedirectURI))
	}

	return NewOAuthConfig(clientID, clientSecret, redirectURI)
}

func required(v *viper.Viper, key, env string) (string, error) {
	if !v.IsSet(key) {
		return "", fmt.Errorf("%w: environment variable %s is not set", ErrConfigMissing, env)
	}
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		return "", fmt.Errorf("%w: environment variable %s is empty", ErrConfigEmpty, env)
	}
	return value, nil
}

// NewOAuthConfig validates the redirect URI and derives the bind host and port.
// A URI without an explicit port uses the scheme default, 80 for http and
// 443 for https.
func NewOAuthConfig(clientID, clientSecret, redirectURI string) (OAuthConfig, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return OAuthConfig{}, fmt.Errorf("%w: redirect URI %q: %w", ErrConfigInvalid, redirectURI, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return OAuthConfig{}, fmt.Errorf("%w: redirect URI %q must be absolute, e.g. http://localhost:8085", ErrConfigInvalid, redirectURI)
	}

	host := u.Hostname()
	if host == "" {
		return OAuthConfig{}, fmt.Errorf("%w: redirect URI %q has no valid host", ErrConfigInvalid, redirectURI)
	}

	port, err := resolvePort(u)
	if err != nil {
		return OAuthConfig{}, fmt.Errorf("%w: redirect URI %q %s", ErrConfigInvalid, redirectURI, err)
	}

	return OAuthConfig{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		RedirectURL:  u,
		Host:         host,
		Port:         port,
	}, nil
}

func resolvePort(u *url.URL) (int, error) {
	raw := u.Port()
	if raw == "" {
		switch u.Scheme {
		case "http":
			return 80, nil
		case "https":
			return 443, nil
		default:
			return 0, fmt.Errorf("has no port and scheme %q has no default", u.Scheme)
		}
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return 0, errors.New("has no valid port")
	}
	return port, nil
}
