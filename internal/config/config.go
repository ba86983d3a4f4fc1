// Package config resolves the runtime configuration: which analysis
// service to talk to, how the transport behaves and where developer logs go.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Environment names selectable via OBE_ENV or --env.
const (
	Development = "development"
	Production  = "production"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "OBE"

// Targets maps an environment to the base URL of its analysis service.
var Targets = map[string]string{
	Development: "http://localhost:8000/",
	Production:  "https://obevalidatorbackend-production.up.railway.app/",
}

// Config holds all runtime configuration.
type Config struct {
	// Env selects the analysis service target.
	Env string `mapstructure:"env" validate:"oneof=development production"`

	// APIURL overrides the target for Env when set.
	APIURL string `mapstructure:"api_url" validate:"omitempty,url"`

	// Endpoint is the path of the validation endpoint on the service.
	Endpoint string `mapstructure:"endpoint" validate:"required,startswith=/"`

	// Timeout bounds a single validation request. Analysis jobs are slow,
	// so the default is generous.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`

	// ContentType is the default Content-Type header of the client.
	ContentType string `mapstructure:"content_type" validate:"required"`

	// WithCredentials makes the client keep and send cookies.
	WithCredentials bool `mapstructure:"with_credentials"`

	// Threshold is the initial alignment threshold shown in the form.
	Threshold float64 `mapstructure:"threshold"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig configures the developer log.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
	// File is the log destination. Empty disables logging, since the
	// terminal belongs to the UI.
	File string `mapstructure:"file"`
}

// Options controls where Load looks for configuration.
type Options struct {
	// File is an explicit config file. When empty, obevalidator.yaml is
	// searched in the working directory and the XDG config directory.
	File string

	// DotEnv is the .env file loaded into the process environment first.
	// Missing files are ignored. Default: ".env".
	DotEnv string

	// Flags, when set, are bound so that changed flags take precedence.
	Flags *pflag.FlagSet
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"env":       "env",
	"api-url":   "api_url",
	"timeout":   "timeout",
	"log-file":  "log.file",
	"log-level": "log.level",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Env:         Production,
		Endpoint:    "/validate_obe/",
		Timeout:     20 * time.Minute,
		ContentType: "application/json",
		Threshold:   0.7,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load resolves configuration from, in increasing priority: defaults, the
// config file, OBE_-prefixed environment variables and changed flags.
func Load(opts Options) (Config, error) {
	dotenv := opts.DotEnv
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("obevalidator")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("env", d.Env)
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("content_type", d.ContentType)
	v.SetDefault("with_credentials", d.WithCredentials)
	v.SetDefault("threshold", d.Threshold)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
}

var validate = validator.New()

// Validate checks field constraints and reports every violation at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// BaseURL returns the analysis service base URL: APIURL when set,
// otherwise the target for Env.
func (c Config) BaseURL() string {
	if c.APIURL != "" {
		return c.APIURL
	}
	return Targets[c.Env]
}

// configDir returns $XDG_CONFIG_HOME/obevalidator, falling back to
// ~/.config/obevalidator.
func configDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "obevalidator"), nil
}
