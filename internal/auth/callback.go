package auth

import (
	"fmt"
	"net/url"

	"github.com/brizzai/loopback-login/internal/auth/constants"
	"github.com/brizzai/loopback-login/internal/auth/models"
)

// ParseCallback rebuilds the full callback URL from the configured scheme,
// host and port plus the request URI the browser sent, and extracts the
// authorization code. A missing or empty code is ErrMissingAuthorizationCode.
func ParseCallback(cfg OAuthConfig, requestURI string) (models.CallbackResult, error) {
	raw := fmt.Sprintf("%s://%s%s", cfg.RedirectURL.Scheme, cfg.BindAddress(), requestURI)
	u, err := url.Parse(raw)
	if err != nil {
		return models.CallbackResult{}, fmt.Errorf("%w: malformed callback URL: %w", ErrCallbackIO, err)
	}

	query := u.Query()
	result := models.CallbackResult{
		RawQuery: u.RawQuery,
		Code:     query.Get(constants.CodeQueryParam),
		Error:    query.Get(constants.ErrorQueryParam),
	}

	if result.Code == "" {
		if result.Error != "" {
			return result, fmt.Errorf("%w: provider returned %q", ErrMissingAuthorizationCode, result.Error)
		}
		return result, ErrMissingAuthorizationCode
	}
	return result, nil
}
