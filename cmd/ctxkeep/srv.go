package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"ctxkeep/internal/blobrepo"
	"ctxkeep/internal/config"
	"ctxkeep/internal/remotestore"
	"ctxkeep/internal/server"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the ctxkeep sync API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.Server.DBPath == "" {
				return fmt.Errorf("server.db_path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			st, blobs, err := openServerDeps(cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := server.New(addr, st, blobs, logger, server.Options{
				Version:        version,
				MaxUploadBytes: cfg.Server.MaxUploadBytes,
				PresignTTL:     time.Duration(cfg.Server.PresignTTLSeconds) * time.Second,
			})
			return srv.ListenAndServe()
		},
	}
}

// openServerDeps opens the remote item store and the blob repository the
// server side needs. The caller owns closing the store.
func openServerDeps(cfg *config.Config, logger *slog.Logger) (*remotestore.Store, *blobrepo.LocalFS, error) {
	secret := cfg.Server.PresignSecret
	if secret == "" {
		var err error
		secret, err = randomSecret()
		if err != nil {
			return nil, nil, err
		}
		logger.Warn("server.presign_secret not set; using an ephemeral secret, attachment URLs will not survive restarts")
	}
	signer, err := blobrepo.NewSigner(secret)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("opening database", "path", cfg.Server.DBPath)
	st, err := remotestore.Open(cfg.Server.DBPath)
	if err != nil {
		return nil, nil, err
	}

	blobs, err := blobrepo.NewLocalFS(cfg.Server.BlobDir, cfg.Server.BaseURL, signer)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return st, blobs, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
