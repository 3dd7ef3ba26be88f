package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/brizzai/loopback-login/internal/auth/constants"
	"github.com/brizzai/loopback-login/internal/auth/models"
	"github.com/brizzai/loopback-login/internal/auth/providers"
	"github.com/brizzai/loopback-login/internal/logger"
	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Login states, logged as the "state" field
const (
	stateWaitingForCallback = "WaitingForCallback"
	stateCodeReceived       = "CodeReceived"
	stateTokenRequested     = "TokenRequested"
	stateCompleted          = "Completed"
)

// GoogleEndpoint is Google's v2 authorization endpoint paired with its token endpoint
var GoogleEndpoint = oauth2.Endpoint{
	AuthURL:  constants.GoogleAuthURL,
	TokenURL: google.Endpoint.TokenURL,
}

// VerifierFactory builds an ID token verifier for the resolved client ID
type VerifierFactory func(ctx context.Context, clientID string) (providers.Verifier, error)

// GoogleVerifierFactory verifies against Google's published signing keys
func GoogleVerifierFactory(ctx context.Context, clientID string) (providers.Verifier, error) {
	v, err := providers.NewGoogleVerifier(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Flow performs interactive logins. It holds no per-attempt state: every call
// to Login resolves its own configuration and owns its own loopback listener.
type Flow struct {
	resolver        ConfigResolver
	exchanger       TokenExchanger
	openBrowser     BrowserOpener
	authEndpoint    oauth2.Endpoint
	callbackTimeout time.Duration
	newVerifier     VerifierFactory
	httpClient      *http.Client
}

// Option configures a Flow
type Option func(*Flow)

// WithBrowserOpener overrides how the authorization URL is opened
func WithBrowserOpener(open BrowserOpener) Option {
	return func(f *Flow) {
		f.openBrowser = open
	}
}

// WithCallbackTimeout bounds the wait for the browser redirect. Zero waits forever.
func WithCallbackTimeout(timeout time.Duration) Option {
	return func(f *Flow) {
		f.callbackTimeout = timeout
	}
}

// WithAuthEndpoint overrides the provider's authorization endpoint
func WithAuthEndpoint(endpoint oauth2.Endpoint) Option {
	return func(f *Flow) {
		f.authEndpoint = endpoint
	}
}

// WithVerifier enables ID token verification
func WithVerifier(factory VerifierFactory) Option {
	return func(f *Flow) {
		f.newVerifier = factory
	}
}

// WithHTTPClient sets the client used for OIDC discovery during verification
func WithHTTPClient(client *http.Client) Option {
	return func(f *Flow) {
		f.httpClient = client
	}
}

// New creates a Flow. The browser opener must be set with WithBrowserOpener.
func New(resolver ConfigResolver, exchanger TokenExchanger, opts ...Option) *Flow {
	f := &Flow{
		resolver:     resolver,
		exchanger:    exchanger,
		authEndpoint: GoogleEndpoint,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Login performs one complete login attempt and returns the ID token.
// Any failure ends the attempt; retrying means calling Login again.
func (f *Flow) Login(ctx context.Context) (string, error) {
	result, err := f.LoginResult(ctx)
	if err != nil {
		return "", err
	}
	return result.IDToken, nil
}

// LoginResult is Login that also returns the verified identity when
// verification is enabled.
func (f *Flow) LoginResult(ctx context.Context) (*models.LoginResult, error) {
	cfg, err := f.resolver.Resolve()
	if err != nil {
		return nil, err
	}
	log := logger.With(zap.Object("oauth", cfg))

	loopback, err := Listen(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := loopback.Close(); err != nil {
			log.Warn("Failed to close loopback listener", zap.Error(err))
		}
	}()

	req := NewAuthorizationRequest(cfg, f.authEndpoint)
	log.Debug("Opening browser", zap.String("url", req.URL))
	if err := Launch(req, f.openBrowser); err != nil {
		return nil, err
	}

	code, err := f.awaitCode(ctx, log, cfg, loopback)
	if err != nil {
		return nil, err
	}

	log.Debug("Exchanging authorization code", zap.String("state", stateTokenRequested))
	idToken, err := f.exchanger.Exchange(ctx, cfg, code)
	if err != nil {
		return nil, err
	}

	result := &models.LoginResult{IDToken: idToken}
	if f.newVerifier != nil {
		if result.User, err = f.verify(ctx, cfg, idToken); err != nil {
			return nil, err
		}
	}

	log.Info("Login completed", zap.String("state", stateCompleted))
	return result, nil
}

func (f *Flow) awaitCode(ctx context.Context, log *zap.Logger, cfg OAuthConfig, loopback *Loopback) (string, error) {
	waitCtx := ctx
	if f.callbackTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, f.callbackTimeout)
		defer cancel()
	}

	log.Debug("Waiting for browser callback",
		zap.String("state", stateWaitingForCallback),
		zap.Duration("timeout", f.callbackTimeout),
	)
	cb, err := loopback.Accept(waitCtx)
	if err != nil {
		return "", err
	}

	result, err := ParseCallback(cfg, cb.RequestURI)
	if err != nil {
		// answer anyway so the browser tab is not left hanging
		if respErr := cb.Respond(http.StatusBadRequest, constants.FailurePage); respErr != nil {
			log.Warn("Failed to send failure page", zap.Error(respErr))
		}
		return "", err
	}

	log.Debug("Authorization code received", zap.String("state", stateCodeReceived))
	if err := cb.Respond(http.StatusOK, constants.SuccessPage); err != nil {
		return "", err
	}
	return result.Code, nil
}

func (f *Flow) verify(ctx context.Context, cfg OAuthConfig, idToken string) (*models.UserInfo, error) {
	if f.httpClient != nil {
		ctx = oidc.ClientContext(ctx, f.httpClient)
	}
	verifier, err := f.newVerifier(ctx, cfg.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIDTokenInvalid, err)
	}
	user, err := verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIDTokenInvalid, err)
	}
	return user, nil
}
