package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/brizzai/loopback-login/internal/auth/constants"
	"github.com/brizzai/loopback-login/internal/requester"
	"golang.org/x/oauth2"
)

// TokenExchanger trades an authorization code for an ID token
type TokenExchanger interface {
	Exchange(ctx context.Context, cfg OAuthConfig, code string) (string, error)
}

// Exchanger posts the authorization code to the provider's token endpoint.
type Exchanger struct {
	requester *requester.HTTPRequester
	endpoint  oauth2.Endpoint
}

// NewExchanger creates an Exchanger for Google's token endpoint
func NewExchanger(r *requester.HTTPRequester) *Exchanger {
	return NewExchangerWithEndpoint(r, GoogleEndpoint)
}

// NewExchangerWithEndpoint creates an Exchanger that posts to endpoint.TokenURL
func NewExchangerWithEndpoint(r *requester.HTTPRequester, endpoint oauth2.Endpoint) *Exchanger {
	return &Exchanger{
		requester: r,
		endpoint:  endpoint,
	}
}

// Exchange sends one form-encoded POST with the code and client credentials
// and returns the id_token from the response.
func (e *Exchanger) Exchange(ctx context.Context, cfg OAuthConfig, code string) (string, error) {
	oc := cfg.oauth2Config(e.endpoint)
	form := url.Values{
		"code":          {code},
		"client_id":     {oc.ClientID},
		"client_secret": {oc.ClientSecret},
		"redirect_uri":  {oc.RedirectURL},
		"grant_type":    {constants.GrantTypeAuthorizationCode},
	}

	resp, err := e.requester.PostForm(ctx, oc.Endpoint.TokenURL, form)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	return parseTokenResponse(resp)
}

func parseTokenResponse(resp *requester.Response) (string, error) {
	body := string(resp.Body)
	if !resp.IsSuccess() {
		return "", &TokenEndpointError{Status: resp.StatusCode, Body: body}
	}

	var payload any
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return "", fmt.Errorf("%w: %w: %s", ErrMalformedResponse, err, body)
	}

	// valid JSON that is not an object has no id_token either
	obj, _ := payload.(map[string]any)
	idToken, _ := obj[constants.IDTokenField].(string)
	if idToken == "" {
		return "", &MissingIDTokenError{Body: body}
	}
	return idToken, nil
}
