package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/brizzai/loopback-login/internal/auth"
	"github.com/brizzai/loopback-login/internal/auth/models"
	"github.com/brizzai/loopback-login/internal/config"
	"github.com/brizzai/loopback-login/internal/logger"
	"github.com/brizzai/loopback-login/internal/output"
	"github.com/brizzai/loopback-login/internal/requester"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "loopback-login",
	Short: "Sign in with Google from the command line",
	Long: `loopback-login performs an OAuth 2.0 authorization code login against Google.
It listens on the host and port of OAUTH_REDIRECT_URI (default http://localhost),
opens the consent page in your browser, waits for the redirect and exchanges the
code for an ID token, which is printed to stdout.

Required environment: OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLogin,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	// stdout carries only the login result
	redirectMessages(os.Stderr)

	config.InitFlags(rootCmd.Flags())
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
}

// redirectMessages points every pterm printer this command uses at w.
// The prefix printers copy the default writer when pterm is loaded, so
// SetDefaultOutput alone does not move them.
func redirectMessages(w io.Writer) {
	pterm.SetDefaultOutput(w)
	pterm.Info = *pterm.Info.WithWriter(w)
	pterm.Success = *pterm.Success.WithWriter(w)
	pterm.Warning = *pterm.Warning.WithWriter(w)
	pterm.Error = *pterm.Error.WithWriter(w)
	pterm.DefaultSpinner = *pterm.DefaultSpinner.WithWriter(w)
}

// newBrowserOpener opens the system browser, or prints the URL with --no-browser
func newBrowserOpener(cfg *config.LoginConfig) auth.BrowserOpener {
	if cfg.NoBrowser {
		return func(url string) error {
			pterm.Info.Printfln("Open this URL in your browser to sign in:\n%s", url)
			return nil
		}
	}
	browser.Stdout = os.Stderr
	return browser.OpenURL
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var flow *auth.Flow
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg, &cfg.Login),
		fx.Provide(newBrowserOpener),
		requester.Module,
		auth.Module,
		fx.Populate(&flow),
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := login(ctx, flow, cfg.Login.NoBrowser)
	if err != nil {
		logger.Error("Login failed", zap.Error(err))
		return err
	}

	if result.User != nil {
		pterm.Success.Printfln("Signed in as %s (%s)", result.User.Email, result.User.ID)
	}
	return output.Render(cmd.OutOrStdout(), result, cfg.Login.Output)
}

func login(ctx context.Context, flow *auth.Flow, noBrowser bool) (*models.LoginResult, error) {
	if noBrowser {
		return flow.LoginResult(ctx)
	}

	spinner, _ := pterm.DefaultSpinner.Start("Complete the sign-in in your browser...")
	result, err := flow.LoginResult(ctx)
	if spinner == nil {
		return result, err
	}
	switch {
	case err == nil:
		spinner.Success("Signed in")
	case errors.Is(err, auth.ErrCallbackTimeout):
		spinner.Fail("Timed out waiting for the browser, run the command again to retry")
	default:
		spinner.Fail("Sign-in failed")
	}
	return result, err
}
