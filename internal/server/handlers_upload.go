package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ctxkeep/internal/api"
	"ctxkeep/internal/blobrepo"
	"ctxkeep/internal/localstore"
	"ctxkeep/internal/models"
)

// handleUpload accepts a batch of items in a single request. Items succeed
// or fail individually: a bad item lands in the errors list without
// aborting the rest of the batch.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req api.UploadRequest
	if err := s.decodeJSON(r, &req, s.opts.MaxUploadBytes); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	if len(req.Items) == 0 {
		s.writeJSON(w, http.StatusBadRequest, api.UploadResponse{
			Success: false,
			ItemIDs: []string{},
			Errors:  []string{"No items provided"},
		})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = models.DefaultUserID
	}

	resp := api.UploadResponse{ItemIDs: []string{}}
	for i, in := range req.Items {
		id, err := s.storeItem(r.Context(), userID, in)
		if err != nil {
			s.log().Warn("upload item rejected", "user_id", userID, "index", i, "error", err)
			resp.Errors = append(resp.Errors, err.Error())
			continue
		}
		resp.ItemIDs = append(resp.ItemIDs, id)
	}
	resp.Success = len(resp.ItemIDs) > 0

	s.log().Info("upload complete",
		"user_id", userID,
		"received", len(req.Items),
		"accepted", len(resp.ItemIDs),
		"rejected", len(resp.Errors))

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, resp)
}

// storeItem validates, persists the attachment blob if present, and saves
// the item row. It returns the server-assigned item id.
func (s *Server) storeItem(ctx context.Context, userID string, in api.ItemInput) (string, error) {
	if err := validateItemInput(in); err != nil {
		return "", fmt.Errorf("Validation error: %s", err)
	}

	item := models.RemoteItem{
		UserID:    userID,
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Kind:      models.Kind(in.Kind),
		SourceApp: in.SourceAppBundleID,
		Text:      in.Text,
		URL:       in.URL,
	}

	if in.AttachmentData != "" && in.AttachmentContentType != "" {
		data, err := base64.StdEncoding.DecodeString(in.AttachmentData)
		if err != nil {
			return "", fmt.Errorf("Error processing item: %v", err)
		}
		ext := localstore.FileExtension(in.AttachmentContentType, in.OriginalFilename)
		key := blobrepo.AttachmentKey(userID, item.ID, ext)
		if err := s.blobs.Put(ctx, key, data, in.AttachmentContentType); err != nil {
			return "", fmt.Errorf("Error processing item: %v", err)
		}
		item.AttachmentKey = key
		item.AttachmentContentType = in.AttachmentContentType
		item.OriginalFilename = in.OriginalFilename
		item.AttachmentSize = int64(len(data))
	}

	if err := s.store.Save(ctx, &item); err != nil {
		return "", fmt.Errorf("Error processing item: %v", err)
	}
	return item.ID, nil
}
