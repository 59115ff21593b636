package main

import (
	"github.com/spf13/cobra"

	"bandly-go/internal/config"
	"bandly-go/pkg/logger"
)

type rootOptions struct {
	log logger.Logger
	cfg config.Config

	storageDriver string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "bandly",
		Short:         "Schedule for a worship band: members, rehearsals and events",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.log = logger.NewFromEnv()

			cfg, err := config.Load(opts.log)
			if err != nil {
				opts.log.Critical("app: config failed", "err", err)
				return err
			}
			if opts.storageDriver != "" {
				cfg.Storage.Driver = opts.storageDriver
				if err := cfg.Validate(); err != nil {
					opts.log.Critical("app: config failed", "err", err)
					return err
				}
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.storageDriver, "storage", "", "storage driver (file, memory, postgres, sqlite, bolt); overrides STORAGE_DRIVER")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newReportCommand(opts))
	cmd.AddCommand(newDashboardCommand(opts))
	return cmd
}
