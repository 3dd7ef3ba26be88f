package auth

import (
	"github.com/brizzai/loopback-login/internal/config"
	"github.com/brizzai/loopback-login/internal/requester"
	"go.uber.org/fx"
)

type FlowParams struct {
	fx.In

	Config    *config.LoginConfig
	Resolver  ConfigResolver
	Exchanger TokenExchanger
	Requester *requester.HTTPRequester
	Opener    BrowserOpener
}

// NewFlow creates a Flow from the login settings
func NewFlow(p FlowParams) *Flow {
	opts := []Option{
		WithBrowserOpener(p.Opener),
		WithCallbackTimeout(p.Config.CallbackTimeout),
		WithHTTPClient(p.Requester.Client()),
	}
	if p.Config.Verify {
		opts = append(opts, WithVerifier(GoogleVerifierFactory))
	}
	return New(p.Resolver, p.Exchanger, opts...)
}

// Module provides the login flow dependencies
var Module = fx.Module("auth",
	fx.Provide(
		fx.Annotate(
			NewResolver,
			fx.As(new(ConfigResolver)),
		),
		fx.Annotate(
			NewExchanger,
			fx.As(new(TokenExchanger)),
		),
		NewFlow,
	),
)
