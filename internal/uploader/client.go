// Package uploader bridges the local item store to the remote boundary with
// a single batch request per invocation.
package uploader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"ctxkeep/internal/api"
	"ctxkeep/internal/localstore"
	"ctxkeep/internal/models"
)

var (
	// ErrNoEndpoint is returned when no remote address is configured.
	ErrNoEndpoint = errors.New("no API endpoint configured")
	// ErrInvalidEndpoint is returned when the configured address cannot be
	// parsed into a request target.
	ErrInvalidEndpoint = errors.New("invalid API endpoint")
	// ErrUploadInFlight is returned when an upload is already outstanding.
	ErrUploadInFlight = errors.New("upload already in progress")
)

// Client uploads local items to the remote API. A single upload may be in
// flight at a time; there is no retry and no cancellation once started.
type Client struct {
	endpoint string
	userID   string
	http     *http.Client
	store    *localstore.Store
	logger   *slog.Logger
	busy     atomic.Bool
}

// NewClient creates an upload client reading attachment bytes from store.
func NewClient(endpoint, userID string, store *localstore.Store, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if userID == "" {
		userID = models.DefaultUserID
	}
	return &Client{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		userID:   userID,
		http:     &http.Client{},
		store:    store,
		logger:   logger,
	}
}

// UploadBatch serializes items (reading attachment bytes fresh from the
// vault) and submits them in one request. The server applies per-item
// validation; the response lists accepted ids next to per-item errors.
func (c *Client) UploadBatch(ctx context.Context, items []models.Item) (*api.UploadResponse, error) {
	if c.endpoint == "" {
		return nil, ErrNoEndpoint
	}
	target, err := url.Parse(c.endpoint + "/v1/upload")
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, ErrInvalidEndpoint
	}

	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrUploadInFlight
	}
	defer c.busy.Store(false)

	reqBody := api.UploadRequest{
		Items:  make([]api.ItemInput, 0, len(items)),
		UserID: c.userID,
	}
	for _, item := range items {
		reqBody.Items = append(reqBody.Items, c.encodeItem(item))
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("serialize upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// An all-rejected batch comes back as 400 with the same
		// response envelope; surface the per-item errors instead of a
		// transport error.
		if resp.StatusCode == http.StatusBadRequest {
			var out api.UploadResponse
			if err := json.Unmarshal(body, &out); err == nil && (out.ItemIDs != nil || len(out.Errors) > 0) {
				return &out, nil
			}
		}
		var envelope api.ErrorResponse
		_ = json.Unmarshal(body, &envelope)
		return nil, &api.APIError{Status: resp.StatusCode, Code: envelope.Code, Message: envelope.Error}
	}

	var out api.UploadResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &out, nil
}

// encodeItem maps a local item onto the wire. Attachment bytes are read at
// call time; a failed read drops the attachment fields for that item but the
// item itself is still submitted.
func (c *Client) encodeItem(item models.Item) api.ItemInput {
	input := api.ItemInput{
		Kind:              string(item.Kind),
		SourceAppBundleID: item.SourceApp,
		Text:              item.Text,
		URL:               item.URL,
	}

	if item.AttachmentFileName != "" {
		data, err := c.store.Vault().Read(item.AttachmentFileName)
		if err != nil {
			c.logger.Debug("skip unreadable attachment", "item", item.ID, "file", item.AttachmentFileName, "error", err)
			return input
		}
		input.AttachmentData = base64.StdEncoding.EncodeToString(data)
		input.AttachmentContentType = item.AttachmentContentType
		input.OriginalFilename = item.OriginalFilename
	}
	return input
}
