package blobrepo

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

func testRepo(t *testing.T) *LocalFS {
	t.Helper()
	signer, err := NewSigner("test-secret")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	repo, err := NewLocalFS(t.TempDir(), "http://127.0.0.1:7411", signer)
	if err != nil {
		t.Fatalf("new local fs: %v", err)
	}
	return repo
}

func TestAttachmentKey(t *testing.T) {
	if got := AttachmentKey("default", "abc", "png"); got != "default/abc.png" {
		t.Fatalf("unexpected key: %q", got)
	}
	if got := AttachmentKey("default", "abc", ""); got != "default/abc" {
		t.Fatalf("unexpected key without extension: %q", got)
	}
}

func TestPutAndOpen(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	key := AttachmentKey("default", "item-1", "txt")
	if err := repo.Put(ctx, key, []byte("blob bytes"), "text/plain"); err != nil {
		t.Fatalf("put: %v", err)
	}

	rc, err := repo.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "blob bytes" {
		t.Fatalf("unexpected content: %q", string(data))
	}
}

func TestPutRejectsTraversalKeys(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for _, key := range []string{"", "/abs/key", "../escape", "a/../../b"} {
		if err := repo.Put(ctx, key, []byte("x"), ""); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestPresignedURLRoundTrip(t *testing.T) {
	repo := testRepo(t)
	key := AttachmentKey("default", "item-2", "png")

	signed, err := repo.PresignedURL(key, time.Hour)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(signed, "http://127.0.0.1:7411/v1/blobs/"+key+"?") {
		t.Fatalf("unexpected url shape: %q", signed)
	}

	u, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	expUnix, err := strconv.ParseInt(u.Query().Get("exp"), 10, 64)
	if err != nil {
		t.Fatalf("parse exp: %v", err)
	}
	exp := time.Unix(expUnix, 0)
	sig := u.Query().Get("sig")

	if err := repo.Signer().Verify(key, exp, sig, time.Now()); err != nil {
		t.Fatalf("expected valid grant: %v", err)
	}
	if err := repo.Signer().Verify(key, exp, sig, exp.Add(time.Second)); err == nil {
		t.Fatal("expected expired grant to fail")
	}
	if err := repo.Signer().Verify("default/other.png", exp, sig, time.Now()); err == nil {
		t.Fatal("expected signature bound to key")
	}
	if err := repo.Signer().Verify(key, exp, "deadbeef", time.Now()); err == nil {
		t.Fatal("expected bad signature to fail")
	}
}

func TestSignerRejectsEmptySecret(t *testing.T) {
	if _, err := NewSigner(""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
