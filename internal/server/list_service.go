package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ctxkeep/internal/blobrepo"
	"ctxkeep/internal/models"
	"ctxkeep/internal/remotestore"
)

// ListService reads items for a user in reverse-chronological order and
// optionally mints presigned attachment URLs for the response window.
type ListService struct {
	store      *remotestore.Store
	blobs      *blobrepo.LocalFS
	presignTTL time.Duration
	logger     *slog.Logger
}

func NewListService(store *remotestore.Store, blobs *blobrepo.LocalFS, presignTTL time.Duration, logger *slog.Logger) *ListService {
	if presignTTL <= 0 {
		presignTTL = blobrepo.DefaultPresignTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ListService{store: store, blobs: blobs, presignTTL: presignTTL, logger: logger}
}

// List returns up to limit items for userID, newest first. A limit of zero
// or less means no cap. When includeURLs is set, every item with an
// attachment gets a time-limited AttachmentURL; a mint failure drops the
// URL for that item but keeps the item in the result.
func (l *ListService) List(ctx context.Context, userID string, limit int, includeURLs bool) ([]models.RemoteItem, error) {
	items, err := l.store.ListByDate(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if !includeURLs {
		return items, nil
	}

	for i := range items {
		if items[i].AttachmentKey == "" {
			continue
		}
		u, err := l.blobs.PresignedURL(items[i].AttachmentKey, l.presignTTL)
		if err != nil {
			l.logger.Warn("mint attachment url",
				"user_id", userID, "item_id", items[i].ID, "error", err)
			continue
		}
		items[i].AttachmentURL = u
	}
	return items, nil
}
