package main

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// captureNote is a markdown capture file: optional YAML front matter
// (kind, url, source) followed by the item text.
type captureNote struct {
	Kind   string
	URL    string
	Source string
	Text   string
}

func parseCaptureNote(input string) (captureNote, error) {
	note := captureNote{}
	content := input

	lines := strings.Split(input, "\n")
	if len(lines) >= 3 && strings.TrimSpace(lines[0]) == "---" {
		end := -1
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				end = i
				break
			}
		}
		if end == -1 {
			return note, fmt.Errorf("front matter not closed")
		}

		frontMatter := map[string]any{}
		frontText := strings.Join(lines[1:end], "\n")
		if err := yaml.Unmarshal([]byte(frontText), &frontMatter); err != nil {
			return note, err
		}
		if value, ok := frontMatter["kind"].(string); ok {
			note.Kind = value
		}
		if value, ok := frontMatter["url"].(string); ok {
			note.URL = value
		}
		if value, ok := frontMatter["source"].(string); ok {
			note.Source = value
		}
		content = strings.Join(lines[end+1:], "\n")
	}

	note.Text = strings.TrimSpace(content)
	if note.Kind == "" {
		if note.URL != "" {
			note.Kind = "url"
		} else {
			note.Kind = "text"
		}
	}
	return note, nil
}
