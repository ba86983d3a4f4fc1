package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/obevalidator/internal/app"
)

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	opts := app.Options{
		Client:    rt.client,
		Log:       rt.log,
		Target:    targetHost(rt.cfg.BaseURL()),
		Threshold: rt.cfg.Threshold,
	}
	if len(args) > 0 {
		opts.InitialPath = args[0]
	}

	return app.Run(opts)
}
