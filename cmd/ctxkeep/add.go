package main

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ctxkeep/internal/config"
	"ctxkeep/internal/localstore"
	"ctxkeep/internal/models"
)

type addCmdOptions struct {
	url      string
	filePath string
	fromFile string
	source   string
}

func newAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &addCmdOptions{}
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Capture a context item into the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cfg, opts, jsonOutput, args)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "capture a link instead of text")
	cmd.Flags().StringVar(&opts.filePath, "file", "", "capture a file attachment")
	cmd.Flags().StringVar(&opts.fromFile, "from-file", "", "capture from a markdown note with YAML front matter")
	cmd.Flags().StringVar(&opts.source, "source", "", "source application identifier")
	return cmd
}

func runAdd(cfg *config.Config, opts *addCmdOptions, jsonOutput *bool, args []string) error {
	store, err := localstore.NewStore(cfg.DataDir, slog.Default())
	if err != nil {
		return err
	}

	item, err := captureItem(store, opts, args)
	if err != nil {
		return err
	}

	if *jsonOutput {
		return writeJSON(item)
	}
	return writePlain("%s\n", item.ID)
}

func captureItem(store *localstore.Store, opts *addCmdOptions, args []string) (models.Item, error) {
	switch {
	case opts.fromFile != "":
		return captureFromNote(store, opts.fromFile, opts.source)
	case opts.filePath != "":
		return captureFile(store, opts.filePath, opts.source)
	case opts.url != "":
		return store.AppendURL(opts.url, opts.source)
	case len(args) > 0:
		return store.AppendText(strings.Join(args, " "), opts.source)
	default:
		return models.Item{}, errors.New("nothing to capture: pass text, --url, --file, or --from-file")
	}
}

func captureFile(store *localstore.Store, path, source string) (models.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Item{}, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return store.AppendBinary(data, contentType, filepath.Base(path), source)
}

func captureFromNote(store *localstore.Store, path, source string) (models.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Item{}, err
	}

	note, err := parseCaptureNote(string(data))
	if err != nil {
		return models.Item{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if source != "" {
		note.Source = source
	}

	switch note.Kind {
	case "url":
		return store.AppendURL(note.URL, note.Source)
	case "text":
		return store.AppendText(note.Text, note.Source)
	default:
		return models.Item{}, fmt.Errorf("unsupported kind %q in %s", note.Kind, path)
	}
}
