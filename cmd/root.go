package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/obevalidator/internal/client"
	"github.com/abhisek/obevalidator/internal/config"
	"github.com/abhisek/obevalidator/internal/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "obevalidator [path]",
		Short: "Check exam questions against a syllabus",
		Long: "OBE Validator is a terminal front end for the OBE analysis service. " +
			"Upload a syllabus and a question set, then review per-question alignment and metrics.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runApp,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (default: ./obevalidator.yaml or $XDG_CONFIG_HOME/obevalidator/obevalidator.yaml)")
	pf.String("env", "", "Target environment: development or production (overrides OBE_ENV)")
	pf.String("api-url", "", "Base URL of the analysis service (overrides --env)")
	pf.Duration("timeout", 0, "Request timeout (default 20m)")
	pf.String("log-file", "", "Write developer logs to this file")
	pf.String("log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(newValidateCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// runtime is what every command needs: config, logger and transport.
type runtime struct {
	cfg    config.Config
	log    *zap.Logger
	client client.Validator
}

// setup loads configuration and builds the logger and transport.
func setup(cmd *cobra.Command) (*runtime, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{
		File:  file,
		Flags: cmd.Flags(),
	})
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	v, err := client.New(cfg, log.Named("client"))
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	log.Debug("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL()),
		zap.Duration("timeout", cfg.Timeout),
	)
	return &runtime{cfg: cfg, log: log, client: v}, nil
}

// targetHost returns the host of base for the header, or base itself.
func targetHost(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	return u.Host
}
