package providers

import (
	"context"
	"fmt"

	"github.com/brizzai/loopback-login/internal/auth/constants"
	"github.com/brizzai/loopback-login/internal/auth/models"
	"github.com/brizzai/loopback-login/internal/logger"
	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
)

type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier discovers Google's signing keys and returns a verifier
// for ID tokens issued to clientID. The HTTP client is taken from ctx via
// oidc.ClientContext when present.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	provider, err := oidc.NewProvider(ctx, constants.GoogleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	return &GoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// NewStaticGoogleVerifier verifies against a fixed key set instead of discovery
func NewStaticGoogleVerifier(clientID string, keys oidc.KeySet) *GoogleVerifier {
	return &GoogleVerifier{
		verifier: oidc.NewVerifier(constants.GoogleIssuer, keys, &oidc.Config{ClientID: clientID}),
	}
}

func (p *GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (*models.UserInfo, error) {
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	logger.Debug("ID token verified", zap.String("sub", claims.Sub), zap.Time("expiry", idToken.Expiry))

	return &models.UserInfo{
		ID:            claims.Sub,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}
