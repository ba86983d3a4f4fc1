package client

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/obevalidator/internal/config"
)

// OptionsFromConfig maps the runtime config onto transport options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		BaseURL:         cfg.BaseURL(),
		Endpoint:        cfg.Endpoint,
		Timeout:         cfg.Timeout,
		ContentType:     cfg.ContentType,
		WithCredentials: cfg.WithCredentials,
	}
}

// New creates the Validator used by the app: the HTTP transport wrapped
// with request logging.
func New(cfg config.Config, log *zap.Logger) (Validator, error) {
	base, err := NewHTTPValidator(OptionsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("initializing transport: %w", err)
	}
	return WithLogging(base, log), nil
}
