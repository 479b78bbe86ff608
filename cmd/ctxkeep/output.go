package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"ctxkeep/internal/models"
)

func writeJSON(payload any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeItemList(items []models.Item) error {
	for _, item := range items {
		if err := writePlain("%s\n", formatItemLine(item)); err != nil {
			return err
		}
	}
	return nil
}

func formatItemLine(item models.Item) string {
	return fmt.Sprintf("%s  %s  [%s]  %s", item.ID, formatTime(item.CreatedAt), item.Kind, item.DisplayTitle())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
