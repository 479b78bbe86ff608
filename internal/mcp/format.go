package mcp

import (
	"fmt"
	"strings"

	"ctxkeep/internal/models"
)

const displayTimeLayout = "1/2/2006, 3:04:05 PM"

// itemTitle returns the kind-specific resource name.
func itemTitle(item models.RemoteItem) string {
	switch item.Kind {
	case models.KindText:
		if item.Text == "" {
			return "Empty text"
		}
		runes := []rune(item.Text)
		if len(runes) > 50 {
			return string(runes[:50]) + "..."
		}
		return item.Text
	case models.KindURL:
		if item.URL == "" {
			return "No URL"
		}
		return item.URL
	case models.KindImage:
		if item.OriginalFilename == "" {
			return "Image"
		}
		return item.OriginalFilename
	case models.KindFile:
		if item.OriginalFilename == "" {
			return "File"
		}
		return item.OriginalFilename
	default:
		return "Unknown"
	}
}

// itemDescription returns the one-line resource description.
func itemDescription(item models.RemoteItem) string {
	source := item.SourceApp
	if source == "" {
		source = "unknown app"
	}
	return fmt.Sprintf("%s saved on %s from %s", item.Kind, item.CreatedAt.Local().Format(displayTimeLayout), source)
}

// itemMimeType returns the advertised mime type for a resource.
func itemMimeType(item models.RemoteItem) string {
	if item.AttachmentContentType != "" {
		return item.AttachmentContentType
	}
	switch item.Kind {
	case models.KindText, models.KindURL:
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// formatItem renders one item in the fixed tool-output layout: kind tag,
// title, created date, optional source, then the kind-specific body. Text
// bodies are always shown for text items and additionally in detailed mode.
func formatItem(item models.RemoteItem, detailed bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", strings.ToUpper(string(item.Kind)), itemTitle(item))
	fmt.Fprintf(&b, "Created: %s\n", item.CreatedAt.Local().Format(displayTimeLayout))

	if item.SourceApp != "" {
		fmt.Fprintf(&b, "Source: %s\n", item.SourceApp)
	}

	if (detailed || item.Kind == models.KindText) && item.Text != "" {
		fmt.Fprintf(&b, "\nContent:\n%s\n", item.Text)
	}

	if item.Kind == models.KindURL && item.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", item.URL)
	}

	if item.Kind.HasAttachment() && item.OriginalFilename != "" {
		fmt.Fprintf(&b, "Filename: %s\n", item.OriginalFilename)
		contentType := item.AttachmentContentType
		if contentType == "" {
			contentType = "Unknown"
		}
		fmt.Fprintf(&b, "Type: %s\n", contentType)
		if item.AttachmentSize > 0 {
			fmt.Fprintf(&b, "Size: %.2f KB\n", float64(item.AttachmentSize)/1024)
		}
	}

	return b.String()
}
