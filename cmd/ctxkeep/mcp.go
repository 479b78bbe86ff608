package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ctxkeep/internal/config"
	"ctxkeep/internal/mcp"
)

func newMCPCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the assistant protocol over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}

			// The protocol shares stdout with responses, so all
			// logging goes to stderr.
			logger := slog.Default().With("component", "mcp")

			st, blobs, err := openServerDeps(cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := mcp.NewServer(st, blobs, version, logger)
			return srv.ServeStdio(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
}
