package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ctxkeep/internal/models"
)

const (
	// MetadataFileName is shared with every capture producer writing into
	// the same data directory.
	MetadataFileName       = "context-items.json"
	AttachmentsDirName     = "attachments"
	corruptBackupExtension = ".corrupt"
)

// ErrEmptyPayload is returned when a text item is empty after trimming.
var ErrEmptyPayload = errors.New("empty payload")

// Store is the single local authority for item metadata. All operations are
// serialized through one mutex, which totally orders callers within this
// process. A second producer process may share the same files; safety against
// it relies on every metadata persist being an atomic whole-file replace.
type Store struct {
	mu           sync.Mutex
	dir          string
	metadataPath string
	vault        *AttachmentVault
	logger       *slog.Logger
}

// NewStore opens (creating if needed) the local item store rooted at dir.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("store dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare store dir: %w", err)
	}
	vault, err := NewAttachmentVault(filepath.Join(dir, AttachmentsDirName))
	if err != nil {
		return nil, err
	}
	return &Store{
		dir:          dir,
		metadataPath: filepath.Join(dir, MetadataFileName),
		vault:        vault,
		logger:       logger,
	}, nil
}

// Vault exposes the attachment side-store for callers that need raw bytes.
func (s *Store) Vault() *AttachmentVault {
	return s.vault
}

// AppendText appends a text item. Whitespace-only text is rejected.
func (s *Store) AppendText(text, sourceApp string) (models.Item, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.Item{}, ErrEmptyPayload
	}
	return s.append(models.Item{Kind: models.KindText, SourceApp: sourceApp, Text: trimmed}, nil)
}

// AppendURL appends a url item.
func (s *Store) AppendURL(rawURL, sourceApp string) (models.Item, error) {
	return s.append(models.Item{Kind: models.KindURL, SourceApp: sourceApp, URL: rawURL}, nil)
}

// AppendBinary appends an image or file item with an attachment payload. The
// kind is derived from the declared content type.
func (s *Store) AppendBinary(data []byte, contentType, originalFilename, sourceApp string) (models.Item, error) {
	kind := models.KindFile
	if strings.HasPrefix(strings.ToLower(contentType), "image/") {
		kind = models.KindImage
	}
	item := models.Item{
		Kind:                  kind,
		SourceApp:             sourceApp,
		AttachmentContentType: contentType,
		OriginalFilename:      originalFilename,
	}
	return s.append(item, data)
}

// append assigns identity, writes the attachment (if any) before touching
// metadata, and atomically persists the new item at the head of the set. A
// failed blob write leaves the metadata unchanged.
func (s *Store) append(item models.Item, attachment []byte) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = uuid.NewString()
	item.CreatedAt = time.Now().UTC()

	if attachment != nil {
		filename, err := s.vault.Write(item.ID, attachment, item.AttachmentContentType, item.OriginalFilename)
		if err != nil {
			return models.Item{}, err
		}
		item.AttachmentFileName = filename
	}

	items := s.loadLocked()
	items = append([]models.Item{item}, items...)
	if err := s.persistLocked(items); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// LoadItems returns all items sorted by creation time, most recent first.
// A missing metadata file yields an empty slice. An unreadable file is
// logged, preserved under a backup name, and also yields an empty slice; a
// transient disk fault is indistinguishable from "no items yet".
func (s *Store) LoadItems() []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Delete removes the item with the given id and best-effort deletes its
// attachment file. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.loadLocked()
	kept := make([]models.Item, 0, len(items))
	var removed models.Item
	found := false
	for _, item := range items {
		if item.ID == id {
			removed = item
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return nil
	}
	if err := s.persistLocked(kept); err != nil {
		return err
	}
	if removed.AttachmentFileName != "" {
		if err := s.vault.Delete(removed.AttachmentFileName); err != nil {
			s.logger.Warn("delete attachment", "id", id, "file", removed.AttachmentFileName, "error", err)
		}
	}
	return nil
}

// AttachmentLocation returns the on-disk path of an item's attachment, or
// false when the item has none. No I/O is performed.
func (s *Store) AttachmentLocation(item models.Item) (string, bool) {
	if item.AttachmentFileName == "" {
		return "", false
	}
	path, err := s.vault.Resolve(item.AttachmentFileName)
	if err != nil {
		return "", false
	}
	return path, true
}

func (s *Store) loadLocked() []models.Item {
	data, err := os.ReadFile(s.metadataPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("read metadata", "path", s.metadataPath, "error", err)
		}
		return nil
	}

	var items []models.Item
	if err := json.Unmarshal(data, &items); err != nil {
		backup := s.metadataPath + corruptBackupExtension
		if renameErr := os.Rename(s.metadataPath, backup); renameErr != nil {
			s.logger.Error("back up corrupt metadata", "path", s.metadataPath, "error", renameErr)
		} else {
			s.logger.Error("decode metadata, preserved corrupt file", "path", s.metadataPath, "backup", backup, "error", err)
		}
		return nil
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

// persistLocked rewrites the whole metadata file via temp-file-and-rename so
// that concurrent readers in any process observe either the old or the new
// complete file, never a partial one.
func (s *Store) persistLocked(items []models.Item) error {
	if items == nil {
		items = []models.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".context-items-*.json")
	if err != nil {
		return fmt.Errorf("persist metadata: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("persist metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("persist metadata: %w", err)
	}
	if err := os.Rename(tmpPath, s.metadataPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("persist metadata: %w", err)
	}
	return nil
}
