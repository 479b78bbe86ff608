// Package blobrepo stores synced attachment bytes. Stored blobs are never
// handed out directly; reads go through time-limited presigned URLs.
package blobrepo

import (
	"context"
	"fmt"
	"io"
	"time"
)

// DefaultPresignTTL matches the 1-hour validity advertised to clients.
const DefaultPresignTTL = time.Hour

// BlobRepository is the byte-storage abstraction used by the upload and
// list services.
type BlobRepository interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	PresignedURL(key string, ttl time.Duration) (string, error)
}

// AttachmentKey derives the repository key for an item's attachment.
// Format: {userID}/{itemID}.{extension}, or {userID}/{itemID} without one.
func AttachmentKey(userID, itemID, extension string) string {
	if extension != "" {
		return fmt.Sprintf("%s/%s.%s", userID, itemID, extension)
	}
	return fmt.Sprintf("%s/%s", userID, itemID)
}
