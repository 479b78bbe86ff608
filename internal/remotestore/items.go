package remotestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ctxkeep/internal/models"
)

const itemColumns = "user_id, id, created_at, kind, source_app, text, url, attachment_key, attachment_content_type, original_filename, attachment_size"

// storedTimeLayout pads fractional seconds to nine digits so that the string
// ordering ORDER BY relies on matches chronological ordering. RFC3339Nano
// trims trailing zeros and breaks that property within a second.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Save upserts an item keyed by (user_id, id). Upload ids are freshly
// generated, so in practice this is always an insert; synced items are never
// modified afterwards.
func (s *Store) Save(ctx context.Context, item *models.RemoteItem) error {
	if item == nil {
		return fmt.Errorf("item is required")
	}
	if item.UserID == "" || item.ID == "" {
		return fmt.Errorf("user id and item id are required")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO context_items (`+itemColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, id) DO UPDATE SET
  created_at = excluded.created_at,
  kind = excluded.kind,
  source_app = excluded.source_app,
  text = excluded.text,
  url = excluded.url,
  attachment_key = excluded.attachment_key,
  attachment_content_type = excluded.attachment_content_type,
  original_filename = excluded.original_filename,
  attachment_size = excluded.attachment_size`,
		item.UserID,
		item.ID,
		item.CreatedAt.UTC().Format(storedTimeLayout),
		string(item.Kind),
		nullString(item.SourceApp),
		nullString(item.Text),
		nullString(item.URL),
		nullString(item.AttachmentKey),
		nullString(item.AttachmentContentType),
		nullString(item.OriginalFilename),
		nullInt(item.AttachmentSize),
	)
	return err
}

// Get returns one item, or nil when absent.
func (s *Store) Get(ctx context.Context, userID, id string) (*models.RemoteItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM context_items WHERE user_id = ? AND id = ?`, userID, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListByDate returns the user's items ordered by creation time descending,
// truncated to limit when limit > 0.
func (s *Store) ListByDate(ctx context.Context, userID string, limit int) ([]models.RemoteItem, error) {
	query := `SELECT ` + itemColumns + ` FROM context_items WHERE user_id = ? ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.RemoteItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Search returns the user's items containing query as a case-insensitive
// substring of text, url, or original filename. It scans the whole user
// partition in memory, which only holds up at small per-user item counts.
func (s *Store) Search(ctx context.Context, userID, query string) ([]models.RemoteItem, error) {
	all, err := s.ListByDate(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	var matched []models.RemoteItem
	for _, item := range all {
		if item.MatchesQuery(query) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// Count returns the total number of stored items across all users.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM context_items`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.RemoteItem, error) {
	var (
		item        models.RemoteItem
		createdAt   string
		kind        string
		sourceApp   sql.NullString
		text        sql.NullString
		itemURL     sql.NullString
		key         sql.NullString
		contentType sql.NullString
		filename    sql.NullString
		size        sql.NullInt64
	)
	if err := row.Scan(
		&item.UserID, &item.ID, &createdAt, &kind,
		&sourceApp, &text, &itemURL, &key, &contentType, &filename, &size,
	); err != nil {
		return nil, err
	}

	// RFC3339Nano parsing accepts the padded layout too.
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	item.CreatedAt = ts
	item.Kind = models.Kind(kind)
	item.SourceApp = sourceApp.String
	item.Text = text.String
	item.URL = itemURL.String
	item.AttachmentKey = key.String
	item.AttachmentContentType = contentType.String
	item.OriginalFilename = filename.String
	item.AttachmentSize = size.Int64
	return &item, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}
