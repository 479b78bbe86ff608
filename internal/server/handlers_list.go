package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ctxkeep/internal/api"
	"ctxkeep/internal/models"
)

// handleListItems serves the paginated listing. Query parameters: userId,
// limit (absent means no cap), and includeUrls to mint presigned
// attachment URLs.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	userID := q.Get("userId")
	if userID == "" {
		userID = models.DefaultUserID
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeErrorReq(w, r, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	includeURLs := strings.EqualFold(q.Get("includeUrls"), "true")

	items, err := s.list.List(r.Context(), userID, limit, includeURLs)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, err)
		return
	}
	if items == nil {
		items = []models.RemoteItem{}
	}

	s.writeJSON(w, http.StatusOK, api.ListResponse{Items: items, Count: len(items)})
}
