package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestServeStdioRequestResponse(t *testing.T) {
	s := testServer(sampleItems()...)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`not json at all`,
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := s.ServeStdio(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("serve: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 responses (notification skipped), got %d: %v", len(lines), lines)
	}

	var first Response
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if first.Error != nil {
		t.Fatalf("initialize failed: %+v", first.Error)
	}

	var last Response
	if err := json.Unmarshal([]byte(lines[2]), &last); err != nil {
		t.Fatalf("decode last: %v", err)
	}
	if last.Error == nil || last.Error.Code != codeParseError {
		t.Fatalf("expected parse error for garbage line, got %+v", last.Error)
	}
}
