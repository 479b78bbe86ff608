package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ctxkeep/internal/api"
	"ctxkeep/internal/config"
)

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show sync server info",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: 10 * time.Second}
			target := strings.TrimRight(cfg.APIURL, "/") + "/v1/info"

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, target, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
				return &api.APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
			}

			var info api.InfoResponse
			if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
				return fmt.Errorf("decode info response: %w", err)
			}

			if *jsonOutput {
				return writeJSON(info)
			}
			return writePlain("name: %s\nversion: %s\nitems: %d\n", info.Name, info.Version, info.ItemCount)
		},
	}
}
