package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("loopback-login version %s, commit %s, built at %s", version, commit, date)
}

// DefaultCallbackTimeout bounds how long a login waits for the browser redirect.
const DefaultCallbackTimeout = 5 * time.Minute

type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Login   LoginConfig   `mapstructure:"login"`
}

// OutputFormat selects how a successful login is printed
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

type LoginConfig struct {
	// CallbackTimeout of zero waits for the redirect indefinitely.
	CallbackTimeout time.Duration `mapstructure:"callback_timeout"`
	NoBrowser       bool          `mapstructure:"no_browser"`
	Verify          bool          `mapstructure:"verify"`
	Output          OutputFormat  `mapstructure:"output"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`

	// File receives the logs instead of stderr when set
	File string `mapstructure:"file"`
}

// InitFlags registers the command line flags on fs (without parsing)
func InitFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a config file")
	fs.Duration("timeout", DefaultCallbackTimeout, "How long to wait for the browser redirect (0 waits forever)")
	fs.Bool("no-browser", false, "Print the authorization URL instead of opening a browser")
	fs.Bool("verify", false, "Verify the returned ID token against Google's signing keys")
	fs.StringP("output", "o", string(OutputText), "Output format (text|json|yaml)")
	fs.String("log-level", "warn", "Log level (debug|info|warn|error)")
	fs.String("log-file", "", "Append logs to this file instead of stderr")
}

// flagKeys maps flag names onto config keys
var flagKeys = map[string]string{
	"timeout":    "login.callback_timeout",
	"no-browser": "login.no_browser",
	"verify":     "login.verify",
	"output":     "login.output",
	"log-level":  "logging.level",
	"log-file":   "logging.file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
	v.SetDefault("login.callback_timeout", DefaultCallbackTimeout)
	v.SetDefault("login.output", string(OutputText))
}

// Load builds the application config from defaults, an optional config file,
// LOOPBACK_LOGIN_* environment variables and the given flags, in increasing
// order of precedence. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("LOOPBACK_LOGIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var configFile string
	if fs != nil {
		configFile, _ = fs.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "loopback-login"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// An explicit --config must exist, the search path may come up empty
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the values that cannot be fixed up with a default
func (c *Config) Validate() error {
	switch c.Login.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unsupported output format %q, expected text, json or yaml", c.Login.Output)
	}
	if c.Login.CallbackTimeout < 0 {
		return fmt.Errorf("login.callback_timeout must not be negative, got %s", c.Login.CallbackTimeout)
	}
	return nil
}
