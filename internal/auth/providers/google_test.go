package providers

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"testing"
	"time"

	"github.com/brizzai/loopback-login/internal/auth/models"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, key *rsa.PrivateKey, claims map[string]interface{}) string {
	t.Helper()
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	require.NoError(t, err)

	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	jws, err := signer.Sign(payload)
	require.NoError(t, err)

	raw, err := jws.CompactSerialize()
	require.NoError(t, err)
	return raw
}

func TestGoogleVerifier_Verify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	verifier := NewStaticGoogleVerifier("client-123.apps.googleusercontent.com", keys)

	now := time.Now()
	baseClaims := func() map[string]interface{} {
		return map[string]interface{}{
			"iss":            "https://accounts.google.com",
			"aud":            "client-123.apps.googleusercontent.com",
			"sub":            "1098765",
			"email":          "ada@example.com",
			"email_verified": true,
			"name":           "Ada Lovelace",
			"picture":        "https://example.com/ada.png",
			"iat":            now.Unix(),
			"exp":            now.Add(time.Hour).Unix(),
		}
	}

	tests := []struct {
		name    string
		token   func() string
		want    *models.UserInfo
		wantErr string
	}{
		{
			name:  "valid token",
			token: func() string { return signToken(t, key, baseClaims()) },
			want: &models.UserInfo{
				ID:            "1098765",
				Email:         "ada@example.com",
				EmailVerified: true,
				Name:          "Ada Lovelace",
				Picture:       "https://example.com/ada.png",
			},
		},
		{
			name: "issuer without scheme",
			token: func() string {
				c := baseClaims()
				c["iss"] = "accounts.google.com"
				return signToken(t, key, c)
			},
			want: &models.UserInfo{
				ID:            "1098765",
				Email:         "ada@example.com",
				EmailVerified: true,
				Name:          "Ada Lovelace",
				Picture:       "https://example.com/ada.png",
			},
		},
		{
			name: "wrong audience",
			token: func() string {
				c := baseClaims()
				c["aud"] = "someone-else"
				return signToken(t, key, c)
			},
			wantErr: "failed to verify ID token",
		},
		{
			name: "expired",
			token: func() string {
				c := baseClaims()
				c["exp"] = now.Add(-time.Hour).Unix()
				return signToken(t, key, c)
			},
			wantErr: "expired",
		},
		{
			name:    "signed by unknown key",
			token:   func() string { return signToken(t, otherKey, baseClaims()) },
			wantErr: "failed to verify ID token",
		},
		{
			name:    "not a JWT",
			token:   func() string { return "abc.def.ghi" },
			wantErr: "failed to verify ID token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := verifier.Verify(context.Background(), tt.token())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Verify() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
