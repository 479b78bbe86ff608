package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ctxkeep/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "ctxkeep",
		Short: "Ctxkeep captures context items locally and syncs them to a remote store",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newAddCmd(cfg, &jsonOutput),
		newListCmd(cfg, &jsonOutput),
		newRmCmd(cfg),
		newSyncCmd(cfg, &jsonOutput),
		newSrvCmd(cfg),
		newMCPCmd(cfg),
		newInfoCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
	)

	return cmd
}
