package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"ctxkeep/internal/models"
)

type fakeRepo struct {
	items []models.RemoteItem
}

func (f *fakeRepo) Get(_ context.Context, userID, id string) (*models.RemoteItem, error) {
	for _, item := range f.items {
		if item.UserID == userID && item.ID == id {
			out := item
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListByDate(_ context.Context, userID string, limit int) ([]models.RemoteItem, error) {
	var out []models.RemoteItem
	for _, item := range f.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) Search(_ context.Context, userID, query string) ([]models.RemoteItem, error) {
	all, _ := f.ListByDate(context.Background(), userID, 0)
	var out []models.RemoteItem
	for _, item := range all {
		if item.MatchesQuery(query) {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeBlobs struct{}

func (fakeBlobs) Put(context.Context, string, []byte, string) error { return nil }
func (fakeBlobs) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not implemented")
}
func (fakeBlobs) PresignedURL(key string, _ time.Duration) (string, error) {
	return "http://signed.example/" + key, nil
}

func testServer(items ...models.RemoteItem) *Server {
	return NewServer(&fakeRepo{items: items}, fakeBlobs{}, "test", nil)
}

func call(t *testing.T, s *Server, method string, params any) *Response {
	t.Helper()
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			t.Fatalf("marshal params: %v", err)
		}
		raw = data
	}
	resp := s.Handle(context.Background(), &Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  method,
		Params:  raw,
	})
	if resp == nil {
		t.Fatalf("expected response for %s", method)
	}
	return resp
}

func sampleItems() []models.RemoteItem {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return []models.RemoteItem{
		{UserID: "default", ID: "txt-1", CreatedAt: base, Kind: models.KindText, Text: "Planning a trip to Paris in May", SourceApp: "com.apple.Notes"},
		{UserID: "default", ID: "url-1", CreatedAt: base.Add(time.Minute), Kind: models.KindURL, URL: "https://example.com/guide"},
		{UserID: "default", ID: "img-1", CreatedAt: base.Add(2 * time.Minute), Kind: models.KindImage,
			AttachmentKey: "default/img-1.png", AttachmentContentType: "image/png", OriginalFilename: "eiffel.png", AttachmentSize: 4096},
	}
}

func TestInitializeAndPing(t *testing.T) {
	s := testServer()
	resp := call(t, s, "initialize", nil)
	if resp.Error != nil {
		t.Fatalf("initialize error: %v", resp.Error)
	}
	result := resp.Result.(map[string]any)
	if _, ok := result["capabilities"]; !ok {
		t.Fatal("expected capabilities in initialize result")
	}

	if resp := call(t, s, "ping", nil); resp.Error != nil {
		t.Fatalf("ping error: %v", resp.Error)
	}
}

func TestNotificationGetsNoReply(t *testing.T) {
	s := testServer()
	resp := s.Handle(context.Background(), &Request{JSONRPC: "2.0", Method: "notifications/initialized"})
	if resp != nil {
		t.Fatalf("expected nil response for notification, got %+v", resp)
	}
}

func TestListResources(t *testing.T) {
	s := testServer(sampleItems()...)
	resp := call(t, s, "resources/list", nil)
	if resp.Error != nil {
		t.Fatalf("list error: %v", resp.Error)
	}

	resources := resp.Result.(map[string]any)["resources"].([]Resource)
	if len(resources) != 3 {
		t.Fatalf("expected 3 resources, got %d", len(resources))
	}
	// Most recent first: the image item.
	img := resources[0]
	if img.URI != "context://default/img-1" {
		t.Fatalf("unexpected uri: %q", img.URI)
	}
	if img.Name != "eiffel.png" || img.MimeType != "image/png" {
		t.Fatalf("unexpected image resource: %+v", img)
	}
	if !strings.HasPrefix(img.Description, "image saved on ") {
		t.Fatalf("unexpected description: %q", img.Description)
	}
	if !strings.HasSuffix(img.Description, "from unknown app") {
		t.Fatalf("expected unknown app suffix: %q", img.Description)
	}

	text := resources[2]
	if text.Name != "Planning a trip to Paris in May" || text.MimeType != "text/plain" {
		t.Fatalf("unexpected text resource: %+v", text)
	}
	if !strings.HasSuffix(text.Description, "from com.apple.Notes") {
		t.Fatalf("unexpected text description: %q", text.Description)
	}
}

func TestReadResourcePerKind(t *testing.T) {
	s := testServer(sampleItems()...)

	read := func(uri string) *Response {
		return call(t, s, "resources/read", map[string]any{"uri": uri})
	}
	contentOf := func(resp *Response) ResourceContent {
		return resp.Result.(map[string]any)["contents"].([]ResourceContent)[0]
	}

	txt := contentOf(read("context://default/txt-1"))
	if txt.Text != "Planning a trip to Paris in May" {
		t.Fatalf("unexpected text rendering: %q", txt.Text)
	}

	u := contentOf(read("context://default/url-1"))
	if !strings.HasPrefix(u.Text, "URL: https://example.com/guide") {
		t.Fatalf("unexpected url rendering: %q", u.Text)
	}
	if !strings.Contains(u.Text, "Saved from: Unknown") {
		t.Fatalf("expected Unknown source: %q", u.Text)
	}

	img := contentOf(read("context://default/img-1"))
	for _, want := range []string{
		"Attachment: eiffel.png",
		"Type: image/png",
		"Size: 4096 bytes",
		"Download URL: http://signed.example/default/img-1.png",
		"valid for 1 hour",
	} {
		if !strings.Contains(img.Text, want) {
			t.Fatalf("missing %q in rendering: %q", want, img.Text)
		}
	}
}

func TestReadResourceErrors(t *testing.T) {
	s := testServer(sampleItems()...)

	resp := call(t, s, "resources/read", map[string]any{"uri": "bogus://nope"})
	if resp.Error == nil || !strings.Contains(resp.Error.Message, "invalid resource URI") {
		t.Fatalf("expected invalid URI error, got %+v", resp.Error)
	}

	resp = call(t, s, "resources/read", map[string]any{"uri": "context://default/missing"})
	if resp.Error == nil || !strings.Contains(resp.Error.Message, "not found") {
		t.Fatalf("expected not found error, got %+v", resp.Error)
	}
}

func TestToolsList(t *testing.T) {
	s := testServer()
	resp := call(t, s, "tools/list", nil)
	tools := resp.Result.(map[string]any)["tools"].([]Tool)
	if len(tools) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(tools))
	}
	names := map[string]bool{}
	for _, tool := range tools {
		names[tool.Name] = true
		if tool.InputSchema["type"] != "object" {
			t.Fatalf("tool %s schema missing object type", tool.Name)
		}
	}
	for _, want := range []string{"search_context", "list_recent_context", "get_context_item"} {
		if !names[want] {
			t.Fatalf("missing tool %s", want)
		}
	}
}

func toolText(t *testing.T, resp *Response) string {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("tool error: %v", resp.Error)
	}
	blocks := resp.Result.(map[string]any)["content"].([]ContentBlock)
	if len(blocks) != 1 || blocks[0].Type != "text" {
		t.Fatalf("expected single text block, got %+v", blocks)
	}
	return blocks[0].Text
}

func TestSearchContextTool(t *testing.T) {
	s := testServer(sampleItems()...)
	resp := call(t, s, "tools/call", map[string]any{
		"name":      "search_context",
		"arguments": map[string]any{"query": "paris"},
	})
	text := toolText(t, resp)
	if !strings.HasPrefix(text, `Found 1 context items matching "paris":`) {
		t.Fatalf("unexpected header: %q", text)
	}
	if !strings.Contains(text, "[TEXT] Planning a trip to Paris in May") {
		t.Fatalf("expected matching item in output: %q", text)
	}
	if strings.Contains(text, "example.com/guide") {
		t.Fatalf("non-matching item leaked into output: %q", text)
	}
}

func TestListRecentContextTool(t *testing.T) {
	s := testServer(sampleItems()...)
	resp := call(t, s, "tools/call", map[string]any{
		"name":      "list_recent_context",
		"arguments": map[string]any{"limit": 2},
	})
	text := toolText(t, resp)
	if !strings.HasPrefix(text, "Recent context items (2):") {
		t.Fatalf("unexpected header: %q", text)
	}
	if !strings.Contains(text, "[IMAGE] eiffel.png") || !strings.Contains(text, "[URL] https://example.com/guide") {
		t.Fatalf("expected two most recent items: %q", text)
	}
	if !strings.Contains(text, "Size: 4.00 KB") {
		t.Fatalf("expected KB size formatting: %q", text)
	}
}

func TestGetContextItemTool(t *testing.T) {
	s := testServer(sampleItems()...)

	resp := call(t, s, "tools/call", map[string]any{
		"name":      "get_context_item",
		"arguments": map[string]any{"itemId": "txt-1"},
	})
	text := toolText(t, resp)
	if !strings.Contains(text, "Content:\nPlanning a trip to Paris in May") {
		t.Fatalf("expected detailed content: %q", text)
	}
	if !strings.Contains(text, "Source: com.apple.Notes") {
		t.Fatalf("expected source line: %q", text)
	}

	resp = call(t, s, "tools/call", map[string]any{
		"name":      "get_context_item",
		"arguments": map[string]any{"itemId": "missing"},
	})
	if text := toolText(t, resp); text != "Context item not found: missing" {
		t.Fatalf("expected not-found message, got %q", text)
	}
}

func TestRecentItemsResolveAsResources(t *testing.T) {
	s := testServer(sampleItems()...)

	items, err := (&fakeRepo{items: sampleItems()}).ListByDate(context.Background(), "default", defaultRecentLimit)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, item := range items {
		uri := fmt.Sprintf("context://%s/%s", item.UserID, item.ID)
		resp := call(t, s, "resources/read", map[string]any{"uri": uri})
		if resp.Error != nil {
			t.Fatalf("read %s: %v", uri, resp.Error)
		}
		content := resp.Result.(map[string]any)["contents"].([]ResourceContent)[0]
		switch item.Kind {
		case models.KindURL:
			if !strings.HasPrefix(content.Text, "URL: ") {
				t.Fatalf("url resource rendering broken: %q", content.Text)
			}
		case models.KindText:
			if content.Text != item.Text {
				t.Fatalf("text resource rendering broken: %q", content.Text)
			}
		default:
			if !strings.Contains(content.Text, "Download URL: ") {
				t.Fatalf("binary resource rendering broken: %q", content.Text)
			}
		}
	}
}

func TestUnknownMethodAndTool(t *testing.T) {
	s := testServer()
	if resp := call(t, s, "resources/subscribe", nil); resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method not found, got %+v", resp)
	}
	resp := call(t, s, "tools/call", map[string]any{"name": "bogus_tool", "arguments": map[string]any{}})
	if resp.Error == nil || !strings.Contains(resp.Error.Message, "unknown tool") {
		t.Fatalf("expected unknown tool error, got %+v", resp)
	}
}
