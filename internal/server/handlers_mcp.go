package server

import (
	"net/http"

	"ctxkeep/internal/mcp"
)

// handleMCP bridges the assistant protocol over HTTP: one JSON-RPC request
// per POST. Notifications produce no response body.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	var req mcp.Request
	if err := s.decodeJSON(r, &req, defaultJSONMaxBody); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	resp := s.assist.Handle(r.Context(), &req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
