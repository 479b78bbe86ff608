package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"ctxkeep/internal/config"
	"ctxkeep/internal/localstore"
	"ctxkeep/internal/uploader"
)

func newSyncCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload all locally captured items in one batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := localstore.NewStore(cfg.DataDir, slog.Default())
			if err != nil {
				return err
			}

			items := store.LoadItems()
			if len(items) == 0 {
				return writePlain("nothing to sync\n")
			}

			client := uploader.NewClient(cfg.APIURL, cfg.UserID, store, slog.Default())
			resp, err := client.UploadBatch(cmd.Context(), items)
			if err != nil {
				return err
			}

			if *jsonOutput {
				return writeJSON(resp)
			}

			if err := writePlain("uploaded %d of %d items\n", len(resp.ItemIDs), len(items)); err != nil {
				return err
			}
			for _, msg := range resp.Errors {
				if err := writePlain("error: %s\n", msg); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
