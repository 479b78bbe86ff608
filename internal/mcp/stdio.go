package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Larger than any reasonable single-line request, still bounded.
const maxStdioLineBytes = 16 * 1024 * 1024

// ServeStdio answers newline-delimited JSON-RPC requests from r on w until
// EOF or context cancellation. This is the transport MCP clients spawn as a
// subprocess.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxStdioLineBytes)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if encErr := enc.Encode(errorResponse(nil, codeParseError, "parse error")); encErr != nil {
				return encErr
			}
			continue
		}

		resp := s.Handle(ctx, &req)
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return scanner.Err()
}
