package localstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fallbackExtension is used when neither the filename nor the content type
// yields a usable extension.
const fallbackExtension = "dat"

var contentTypeExtensions = map[string]string{
	"image/png":                    "png",
	"image/jpeg":                   "jpg",
	"image/jpg":                    "jpg",
	"image/heic":                   "heic",
	"image/heif":                   "heif",
	"image/gif":                    "gif",
	"image/webp":                   "webp",
	"application/pdf":              "pdf",
	"text/plain":                   "txt",
	"application/json":             "json",
	"application/zip":              "zip",
	"application/x-zip-compressed": "zip",
	"video/mp4":                    "mp4",
	"video/quicktime":              "mov",
	"audio/mpeg":                   "mp3",
	"audio/mp4":                    "m4a",
}

// AttachmentVault stores raw attachment bytes on disk, one write-once file
// per item, named {itemID}.{extension}.
type AttachmentVault struct {
	dir string
}

// NewAttachmentVault creates a vault rooted at dir.
func NewAttachmentVault(dir string) (*AttachmentVault, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("vault dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare vault dir: %w", err)
	}
	return &AttachmentVault{dir: dir}, nil
}

// FileExtension selects the extension for a payload: the original filename's
// extension wins, then the declared content type, then "dat".
func FileExtension(contentType, originalFilename string) string {
	if originalFilename != "" {
		if ext := strings.TrimPrefix(filepath.Ext(originalFilename), "."); ext != "" {
			return strings.ToLower(ext)
		}
	}
	if contentType != "" {
		if ext, ok := contentTypeExtensions[strings.ToLower(contentType)]; ok {
			return ext
		}
	}
	return fallbackExtension
}

// Write persists data under id with the chosen extension and returns the
// stored filename. The file only becomes visible under its final name once
// fully written.
func (v *AttachmentVault) Write(id string, data []byte, contentType, originalFilename string) (string, error) {
	filename := fmt.Sprintf("%s.%s", id, FileExtension(contentType, originalFilename))

	tmp, err := os.CreateTemp(v.dir, ".attachment-*")
	if err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write attachment: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write attachment: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(v.dir, filename)); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return filename, nil
}

// Read returns the stored bytes for filename.
func (v *AttachmentVault) Read(filename string) ([]byte, error) {
	path, err := v.Resolve(filename)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Delete removes a stored attachment. Missing files are ignored.
func (v *AttachmentVault) Delete(filename string) error {
	path, err := v.Resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Resolve maps a stored filename to its on-disk path without touching disk.
func (v *AttachmentVault) Resolve(filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", fmt.Errorf("attachment filename is required")
	}
	if filepath.Base(filename) != filename {
		return "", fmt.Errorf("invalid attachment filename %q", filename)
	}
	return filepath.Join(v.dir, filename), nil
}
