// Package api defines the wire types shared by the sync client and the
// remote API server.
package api

import "ctxkeep/internal/models"

// ItemInput is one item submitted through the upload protocol. Attachment
// bytes travel base64-encoded in AttachmentData.
type ItemInput struct {
	Kind                  string `json:"kind"`
	SourceAppBundleID     string `json:"sourceAppBundleID,omitempty"`
	Text                  string `json:"text,omitempty"`
	URL                   string `json:"url,omitempty"`
	AttachmentData        string `json:"attachmentData,omitempty"`
	AttachmentContentType string `json:"attachmentContentType,omitempty"`
	OriginalFilename      string `json:"originalFilename,omitempty"`
}

// UploadRequest is the single-request batch payload.
type UploadRequest struct {
	Items  []ItemInput `json:"items"`
	UserID string      `json:"userId,omitempty"`
}

// UploadResponse reports per-item partial-failure results. Success is true
// iff at least one item was accepted.
type UploadResponse struct {
	Success bool     `json:"success"`
	ItemIDs []string `json:"itemIds"`
	Errors  []string `json:"errors,omitempty"`
}

// ListResponse is the paginated listing payload.
type ListResponse struct {
	Items []models.RemoteItem `json:"items"`
	Count int                 `json:"count"`
}

// InfoResponse describes the running server.
type InfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	ItemCount int    `json:"itemCount"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
