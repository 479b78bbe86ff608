package blobrepo

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LocalFS stores blobs in a local directory tree mirroring their keys and
// serves presigned URLs pointing at the API server's blob endpoint.
type LocalFS struct {
	root    string
	baseURL string
	signer  *Signer
}

// NewLocalFS creates a filesystem blob repository rooted at root. Presigned
// URLs are built against baseURL and signed with signer.
func NewLocalFS(root, baseURL string, signer *Signer) (*LocalFS, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("blob root is required")
	}
	if signer == nil {
		return nil, fmt.Errorf("signer is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &LocalFS{root: abs, baseURL: strings.TrimRight(baseURL, "/"), signer: signer}, nil
}

// Put stores data under key. The blob only appears under its final path once
// fully written.
func (r *LocalFS) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := r.pathFromKey(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Join(r.root, "tmp"), "put-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Open returns a reader for the blob at key.
func (r *LocalFS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := r.pathFromKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// PresignedURL mints a time-limited read URL for key. TTL defaults to one
// hour when non-positive.
func (r *LocalFS) PresignedURL(key string, ttl time.Duration) (string, error) {
	if _, err := r.pathFromKey(key); err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}
	exp := time.Now().Add(ttl)
	sig, err := r.signer.Sign(key, exp)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("exp", strconv.FormatInt(exp.Unix(), 10))
	q.Set("sig", sig)
	return fmt.Sprintf("%s/v1/blobs/%s?%s", r.baseURL, key, q.Encode()), nil
}

// Signer exposes the signer so the serving endpoint can verify grants.
func (r *LocalFS) Signer() *Signer {
	return r.signer
}

func (r *LocalFS) pathFromKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("blob key is required")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("blob key must be relative")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.Contains(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob key")
	}
	return filepath.Join(r.root, clean), nil
}
