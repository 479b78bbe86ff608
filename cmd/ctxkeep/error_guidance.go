package main

import (
	"errors"
	"net"

	"ctxkeep/internal/api"
	"ctxkeep/internal/uploader"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify CTXKEEP_API_URL points to a ctxkeep server.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, uploader.ErrNoEndpoint) || errors.Is(err, uploader.ErrInvalidEndpoint) {
		lines = append(lines, "hint: set the sync endpoint with: ctxkeep config set api_url <url>")
		return uniqueLines(lines)
	}

	if errors.Is(err, uploader.ErrUploadInFlight) {
		lines = append(lines, "hint: a sync is already running; wait for it to finish.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a ctxkeep server is running at CTXKEEP_API_URL.",
			"hint: start a local server with: ctxkeep srv",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
