// Package output renders a successful login for the terminal or for scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/brizzai/loopback-login/internal/auth/models"
	"github.com/brizzai/loopback-login/internal/config"
	"gopkg.in/yaml.v3"
)

// Render writes result to w in the given format. The text format is the bare
// ID token on one line so it can be captured with $(...).
func Render(w io.Writer, result *models.LoginResult, format config.OutputFormat) error {
	switch format {
	case config.OutputText, "":
		_, err := fmt.Fprintln(w, result.IDToken)
		return err
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
