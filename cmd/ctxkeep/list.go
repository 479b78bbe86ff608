package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"ctxkeep/internal/config"
	"ctxkeep/internal/localstore"
)

func newListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List locally captured items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := localstore.NewStore(cfg.DataDir, slog.Default())
			if err != nil {
				return err
			}

			items := store.LoadItems()
			if limit > 0 && len(items) > limit {
				items = items[:limit]
			}

			if *jsonOutput {
				return writeJSON(items)
			}
			return writeItemList(items)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of items to show")
	return cmd
}
