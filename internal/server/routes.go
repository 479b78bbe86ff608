package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)

	// Sync protocol.
	mux.HandleFunc("POST /v1/upload", s.handleUpload)

	// Listing.
	mux.HandleFunc("GET /v1/items", s.handleListItems)

	// Presigned blob reads.
	mux.HandleFunc("GET /v1/blobs/{key...}", s.handleBlobDownload)

	// Assistant protocol.
	mux.HandleFunc("POST /v1/mcp", s.handleMCP)

	return mux
}
