package server

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"
	"time"
)

// handleBlobDownload serves attachment bytes addressed by a presigned URL.
// The exp and sig query parameters carry the expiry and the keyed MAC
// minted at list time; anything that fails verification gets a 403.
func (s *Server) handleBlobDownload(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		s.writeErrorReq(w, r, http.StatusNotFound, fmt.Errorf("missing blob key"))
		return
	}

	q := r.URL.Query()
	expUnix, err := strconv.ParseInt(q.Get("exp"), 10, 64)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusForbidden, fmt.Errorf("invalid expiry"))
		return
	}
	exp := time.Unix(expUnix, 0)

	if err := s.blobs.Signer().Verify(key, exp, q.Get("sig"), time.Now()); err != nil {
		s.writeErrorReq(w, r, http.StatusForbidden, err)
		return
	}

	rc, err := s.blobs.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.writeErrorReq(w, r, http.StatusNotFound, fmt.Errorf("blob not found"))
			return
		}
		s.writeErrorReq(w, r, http.StatusInternalServerError, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.log().Warn("stream blob", "key", key, "error", err)
	}
}
