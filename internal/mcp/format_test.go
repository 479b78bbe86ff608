package mcp

import (
	"strings"
	"testing"
	"time"

	"ctxkeep/internal/models"
)

func TestItemTitleTruncation(t *testing.T) {
	long := strings.Repeat("x", 80)
	item := models.RemoteItem{Kind: models.KindText, Text: long}
	title := itemTitle(item)
	if title != strings.Repeat("x", 50)+"..." {
		t.Fatalf("unexpected truncated title: %q", title)
	}

	short := models.RemoteItem{Kind: models.KindText, Text: "short"}
	if itemTitle(short) != "short" {
		t.Fatalf("short text should not be truncated")
	}
	if itemTitle(models.RemoteItem{Kind: models.KindText}) != "Empty text" {
		t.Fatal("expected Empty text placeholder")
	}
}

func TestItemMimeType(t *testing.T) {
	if got := itemMimeType(models.RemoteItem{Kind: models.KindText}); got != "text/plain" {
		t.Fatalf("unexpected text mime: %q", got)
	}
	if got := itemMimeType(models.RemoteItem{Kind: models.KindFile}); got != "application/octet-stream" {
		t.Fatalf("unexpected file mime: %q", got)
	}
	withType := models.RemoteItem{Kind: models.KindFile, AttachmentContentType: "application/pdf"}
	if got := itemMimeType(withType); got != "application/pdf" {
		t.Fatalf("expected declared content type to win, got %q", got)
	}
}

func TestFormatItemLayout(t *testing.T) {
	item := models.RemoteItem{
		UserID:    "default",
		ID:        "f-1",
		CreatedAt: time.Date(2025, 4, 2, 15, 30, 0, 0, time.UTC),
		Kind:      models.KindFile,
		SourceApp: "com.example.files",
		AttachmentContentType: "application/pdf",
		OriginalFilename:      "report.pdf",
		AttachmentSize:        3 * 1024,
	}

	out := formatItem(item, false)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "[FILE] report.pdf" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Created: ") {
		t.Fatalf("unexpected second line: %q", lines[1])
	}
	if lines[2] != "Source: com.example.files" {
		t.Fatalf("unexpected source line: %q", lines[2])
	}
	if !strings.Contains(out, "Filename: report.pdf\nType: application/pdf\nSize: 3.00 KB\n") {
		t.Fatalf("unexpected attachment block: %q", out)
	}
}

func TestFormatItemTextAlwaysShowsContent(t *testing.T) {
	item := models.RemoteItem{Kind: models.KindText, Text: "the body", CreatedAt: time.Now()}
	brief := formatItem(item, false)
	if !strings.Contains(brief, "Content:\nthe body") {
		t.Fatalf("text items must always include content: %q", brief)
	}

	urlItem := models.RemoteItem{Kind: models.KindURL, URL: "https://x.example", CreatedAt: time.Now()}
	if out := formatItem(urlItem, false); !strings.Contains(out, "URL: https://x.example\n") {
		t.Fatalf("expected URL line: %q", out)
	}
}
