package providers

import (
	"context"

	"github.com/brizzai/loopback-login/internal/auth/models"
)

// Verifier defines how an ID token returned by a login is checked
type Verifier interface {
	// Verify validates the signature, issuer, audience and expiry of
	// rawIDToken and returns the identity it asserts
	Verify(ctx context.Context, rawIDToken string) (*models.UserInfo, error)
}
