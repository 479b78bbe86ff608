package main

import "testing"

func TestParseCaptureNoteFrontMatter(t *testing.T) {
	input := "---\nkind: url\nurl: https://example.com/article\nsource: com.example.browser\n---\nSome notes about the page.\n"

	note, err := parseCaptureNote(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if note.Kind != "url" {
		t.Fatalf("kind = %q", note.Kind)
	}
	if note.URL != "https://example.com/article" {
		t.Fatalf("url = %q", note.URL)
	}
	if note.Source != "com.example.browser" {
		t.Fatalf("source = %q", note.Source)
	}
	if note.Text != "Some notes about the page." {
		t.Fatalf("text = %q", note.Text)
	}
}

func TestParseCaptureNoteDefaultsToText(t *testing.T) {
	note, err := parseCaptureNote("just a plain note\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if note.Kind != "text" {
		t.Fatalf("kind = %q", note.Kind)
	}
	if note.Text != "just a plain note" {
		t.Fatalf("text = %q", note.Text)
	}
}

func TestParseCaptureNoteInfersURLKind(t *testing.T) {
	note, err := parseCaptureNote("---\nurl: https://example.com\n---\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if note.Kind != "url" {
		t.Fatalf("kind = %q", note.Kind)
	}
}

func TestParseCaptureNoteUnclosedFrontMatter(t *testing.T) {
	if _, err := parseCaptureNote("---\nkind: text\nno closing fence"); err == nil {
		t.Fatal("expected error for unclosed front matter")
	}
}
