package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"ctxkeep/internal/config"
	"ctxkeep/internal/localstore"
)

func newRmCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a locally captured item and its attachment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := localstore.NewStore(cfg.DataDir, slog.Default())
			if err != nil {
				return err
			}
			return store.Delete(args[0])
		},
	}
}
