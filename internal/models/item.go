package models

import (
	"strings"
	"time"
)

// Kind defines allowed content kinds for a context item.
type Kind string

const (
	KindText  Kind = "text"
	KindURL   Kind = "url"
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

var validKinds = map[Kind]struct{}{
	KindText:  {},
	KindURL:   {},
	KindImage: {},
	KindFile:  {},
}

// Valid reports whether k is a known content kind.
func (k Kind) Valid() bool {
	_, ok := validKinds[k]
	return ok
}

// HasAttachment reports whether items of this kind carry a binary payload.
func (k Kind) HasAttachment() bool {
	return k == KindImage || k == KindFile
}

// Item is the local representation of a captured context item. Field names
// match the metadata file layout written by capture producers, so a store
// written by one producer is readable by every other.
type Item struct {
	ID                    string    `json:"id"`
	CreatedAt             time.Time `json:"createdAt"`
	Kind                  Kind      `json:"kind"`
	SourceApp             string    `json:"sourceAppBundleID,omitempty"`
	Text                  string    `json:"text,omitempty"`
	URL                   string    `json:"url,omitempty"`
	AttachmentFileName    string    `json:"attachmentFileName,omitempty"`
	AttachmentContentType string    `json:"attachmentContentType,omitempty"`
	OriginalFilename      string    `json:"originalFilename,omitempty"`
}

// DisplayTitle returns a short human-readable title for list output.
func (it Item) DisplayTitle() string {
	switch it.Kind {
	case KindText:
		trimmed := strings.TrimSpace(it.Text)
		if trimmed == "" {
			return "Text Snippet"
		}
		runes := []rune(trimmed)
		if len(runes) > 60 {
			return string(runes[:60])
		}
		return trimmed
	case KindURL:
		if it.URL == "" {
			return "Link"
		}
		return it.URL
	case KindImage:
		if it.OriginalFilename == "" {
			return "Image"
		}
		return it.OriginalFilename
	case KindFile:
		if it.OriginalFilename == "" {
			return "File"
		}
		return it.OriginalFilename
	default:
		return "Unknown"
	}
}

// RemoteItem is the synced representation stored in the remote repository,
// partitioned by user. AttachmentKey addresses the blob repository and is
// unrelated to the local attachment filename.
type RemoteItem struct {
	UserID                string    `json:"userId"`
	ID                    string    `json:"id"`
	CreatedAt             time.Time `json:"createdAt"`
	Kind                  Kind      `json:"kind"`
	SourceApp             string    `json:"sourceAppBundleID,omitempty"`
	Text                  string    `json:"text,omitempty"`
	URL                   string    `json:"url,omitempty"`
	AttachmentKey         string    `json:"attachmentKey,omitempty"`
	AttachmentContentType string    `json:"attachmentContentType,omitempty"`
	OriginalFilename      string    `json:"originalFilename,omitempty"`
	AttachmentSize        int64     `json:"attachmentSize,omitempty"`

	// AttachmentURL is a time-limited read capability minted at list time.
	// It is never persisted.
	AttachmentURL string `json:"attachmentUrl,omitempty"`
}

// MatchesQuery reports whether the item contains query as a case-insensitive
// substring of its text, url, or original filename.
func (it RemoteItem) MatchesQuery(query string) bool {
	q := strings.ToLower(query)
	if it.Text != "" && strings.Contains(strings.ToLower(it.Text), q) {
		return true
	}
	if it.URL != "" && strings.Contains(strings.ToLower(it.URL), q) {
		return true
	}
	if it.OriginalFilename != "" && strings.Contains(strings.ToLower(it.OriginalFilename), q) {
		return true
	}
	return false
}

// DefaultUserID is the implicit single-user identity.
const DefaultUserID = "default"
