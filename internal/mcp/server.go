// Package mcp exposes the remote item set to AI assistants as addressable
// resources and callable tools over JSON-RPC.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"ctxkeep/internal/blobrepo"
	"ctxkeep/internal/models"
)

const (
	serverName     = "ctxkeep"
	protocolRev    = "2024-11-05"
	resourceScheme = "context"

	resourceListLimit  = 100
	defaultRecentLimit = 10
)

var resourceURIPattern = regexp.MustCompile(`^` + resourceScheme + `://([^/]+)/([^/]+)$`)

// ItemRepository is the read surface the protocol server needs.
type ItemRepository interface {
	Get(ctx context.Context, userID, id string) (*models.RemoteItem, error)
	ListByDate(ctx context.Context, userID string, limit int) ([]models.RemoteItem, error)
	Search(ctx context.Context, userID, query string) ([]models.RemoteItem, error)
}

// Server answers assistant-protocol requests against the remote item set.
type Server struct {
	items   ItemRepository
	blobs   blobrepo.BlobRepository
	version string
	logger  *slog.Logger
}

// NewServer creates an assistant protocol server.
func NewServer(items ItemRepository, blobs blobrepo.BlobRepository, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{items: items, blobs: blobs, version: version, logger: logger}
}

// Resource describes one addressable item.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// ResourceContent is one rendered resource payload.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// Tool describes one callable operation.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ContentBlock is one block of tool output.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Handle dispatches one JSON-RPC request. It returns nil for notifications.
func (s *Server) Handle(ctx context.Context, req *Request) *Response {
	if req.JSONRPC != "" && req.JSONRPC != jsonrpcVersion {
		return errorResponse(req.ID, codeInvalidRequest, fmt.Sprintf("unsupported jsonrpc version %q", req.JSONRPC))
	}
	if req.ID == nil {
		// Notifications (e.g. notifications/initialized) need no reply.
		return nil
	}

	switch req.Method {
	case "initialize":
		return resultResponse(req.ID, map[string]any{
			"protocolVersion": protocolRev,
			"serverInfo":      map[string]any{"name": serverName, "version": s.version},
			"capabilities":    map[string]any{"resources": map[string]any{}, "tools": map[string]any{}},
		})
	case "ping":
		return resultResponse(req.ID, map[string]any{})
	case "resources/list":
		return s.handleListResources(ctx, req)
	case "resources/read":
		return s.handleReadResource(ctx, req)
	case "tools/list":
		return resultResponse(req.ID, map[string]any{"tools": toolCatalog()})
	case "tools/call":
		return s.handleCallTool(ctx, req)
	default:
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("unknown method: %s", req.Method))
	}
}

func (s *Server) handleListResources(ctx context.Context, req *Request) *Response {
	userID := models.DefaultUserID
	items, err := s.items.ListByDate(ctx, userID, resourceListLimit)
	if err != nil {
		s.logger.Error("list resources", "error", err)
		return errorResponse(req.ID, codeInternalError, "failed to list resources")
	}

	resources := make([]Resource, 0, len(items))
	for _, item := range items {
		resources = append(resources, Resource{
			URI:         fmt.Sprintf("%s://%s/%s", resourceScheme, item.UserID, item.ID),
			Name:        itemTitle(item),
			Description: itemDescription(item),
			MimeType:    itemMimeType(item),
		})
	}
	return resultResponse(req.ID, map[string]any{"resources": resources})
}

func (s *Server) handleReadResource(ctx context.Context, req *Request) *Response {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "uri parameter required")
	}

	match := resourceURIPattern.FindStringSubmatch(params.URI)
	if match == nil {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("invalid resource URI: %s", params.URI))
	}
	userID, itemID := match[1], match[2]

	item, err := s.items.Get(ctx, userID, itemID)
	if err != nil {
		s.logger.Error("read resource", "uri", params.URI, "error", err)
		return errorResponse(req.ID, codeInternalError, "failed to read resource")
	}
	if item == nil {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("context item not found: %s", itemID))
	}

	content := ResourceContent{URI: params.URI, MimeType: "text/plain", Text: s.renderResource(*item)}
	return resultResponse(req.ID, map[string]any{"contents": []ResourceContent{content}})
}

// renderResource produces the kind-specific textual rendering of one item.
func (s *Server) renderResource(item models.RemoteItem) string {
	switch item.Kind {
	case models.KindText:
		return item.Text
	case models.KindURL:
		source := item.SourceApp
		if source == "" {
			source = "Unknown"
		}
		return fmt.Sprintf("URL: %s\n\nSaved from: %s", item.URL, source)
	default:
		if item.AttachmentKey == "" {
			return "No attachment data available"
		}
		filename := item.OriginalFilename
		if filename == "" {
			filename = "Unnamed"
		}
		contentType := item.AttachmentContentType
		if contentType == "" {
			contentType = "Unknown"
		}
		downloadURL, err := s.blobs.PresignedURL(item.AttachmentKey, blobrepo.DefaultPresignTTL)
		if err != nil {
			s.logger.Error("mint download url", "key", item.AttachmentKey, "error", err)
			return "No attachment data available"
		}
		return fmt.Sprintf(
			"Attachment: %s\nType: %s\nSize: %d bytes\nDownload URL: %s\n\nNote: This URL is valid for 1 hour.",
			filename, contentType, item.AttachmentSize, downloadURL,
		)
	}
}

func toolCatalog() []Tool {
	return []Tool{
		{
			Name:        "search_context",
			Description: "Search through saved context items by text content. Returns matching context items.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query":  map[string]any{"type": "string", "description": "Search query text"},
					"userId": map[string]any{"type": "string", "description": "User ID (defaults to \"default\")"},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "list_recent_context",
			Description: "List the most recent context items saved by the user",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit":  map[string]any{"type": "number", "description": "Maximum number of items to return (default: 10)"},
					"userId": map[string]any{"type": "string", "description": "User ID (defaults to \"default\")"},
				},
			},
		},
		{
			Name:        "get_context_item",
			Description: "Get full details of a specific context item by ID",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"itemId": map[string]any{"type": "string", "description": "Context item ID (UUID)"},
					"userId": map[string]any{"type": "string", "description": "User ID (defaults to \"default\")"},
				},
				"required": []string{"itemId"},
			},
		},
	}
}

func (s *Server) handleCallTool(ctx context.Context, req *Request) *Response {
	var params struct {
		Name      string `json:"name"`
		Arguments struct {
			Query  string  `json:"query"`
			Limit  float64 `json:"limit"`
			ItemID string  `json:"itemId"`
			UserID string  `json:"userId"`
		} `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "invalid tool call parameters")
	}

	userID := params.Arguments.UserID
	if userID == "" {
		userID = models.DefaultUserID
	}

	var text string
	switch params.Name {
	case "search_context":
		if params.Arguments.Query == "" {
			return errorResponse(req.ID, codeInvalidParams, "query is required")
		}
		items, err := s.items.Search(ctx, userID, params.Arguments.Query)
		if err != nil {
			s.logger.Error("search_context", "query", params.Arguments.Query, "error", err)
			return errorResponse(req.ID, codeInternalError, "search failed")
		}
		text = fmt.Sprintf("Found %d context items matching %q:\n\n%s",
			len(items), params.Arguments.Query, joinFormatted(items, false))

	case "list_recent_context":
		limit := int(params.Arguments.Limit)
		if limit <= 0 {
			limit = defaultRecentLimit
		}
		items, err := s.items.ListByDate(ctx, userID, limit)
		if err != nil {
			s.logger.Error("list_recent_context", "error", err)
			return errorResponse(req.ID, codeInternalError, "list failed")
		}
		text = fmt.Sprintf("Recent context items (%d):\n\n%s", len(items), joinFormatted(items, false))

	case "get_context_item":
		if params.Arguments.ItemID == "" {
			return errorResponse(req.ID, codeInvalidParams, "itemId is required")
		}
		item, err := s.items.Get(ctx, userID, params.Arguments.ItemID)
		if err != nil {
			s.logger.Error("get_context_item", "item", params.Arguments.ItemID, "error", err)
			return errorResponse(req.ID, codeInternalError, "lookup failed")
		}
		if item == nil {
			// A missing item is normal protocol output, not a fault.
			text = fmt.Sprintf("Context item not found: %s", params.Arguments.ItemID)
		} else {
			text = formatItem(*item, true)
		}

	default:
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("unknown tool: %s", params.Name))
	}

	return resultResponse(req.ID, map[string]any{"content": []ContentBlock{{Type: "text", Text: text}}})
}

func joinFormatted(items []models.RemoteItem, detailed bool) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, formatItem(item, detailed))
	}
	return strings.Join(parts, "\n\n")
}
