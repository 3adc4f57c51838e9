package store

import (
	"context"
	"database/sql"

	"github.com/m3rciful/cinebot/internal/domain"
)

type itemRow struct {
	Code          string        `db:"code"`
	Title         string        `db:"title"`
	Description   string        `db:"description"`
	MediaKind     string        `db:"media_kind"`
	FileID        string        `db:"file_id"`
	PosterFileID  string        `db:"poster_file_id"`
	UploaderID    int64         `db:"uploader_id"`
	UploadedAt    int64         `db:"uploaded_at"`
	DistChatID    sql.NullInt64 `db:"dist_chat_id"`
	DistMessageID sql.NullInt64 `db:"dist_message_id"`
	Views         int64         `db:"views"`
}

const itemColumns = `code, title, description, media_kind, file_id, poster_file_id,
	uploader_id, uploaded_at, dist_chat_id, dist_message_id, views`

func (r itemRow) domain() domain.Item {
	it := domain.Item{
		Code:         r.Code,
		Title:        r.Title,
		Description:  r.Description,
		Payload:      domain.Media{Kind: domain.MediaKind(r.MediaKind), FileID: r.FileID},
		PosterFileID: r.PosterFileID,
		UploaderID:   r.UploaderID,
		UploadedAt:   fromMillis(r.UploadedAt),
		Views:        r.Views,
	}
	if r.DistChatID.Valid && r.DistMessageID.Valid {
		it.Distribution = domain.MessageRef{ChatID: r.DistChatID.Int64, MessageID: int(r.DistMessageID.Int64)}
	}
	return it
}

func items(rows []itemRow) []domain.Item {
	out := make([]domain.Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.domain())
	}
	return out
}

// InsertItemIfCodeFree inserts the item unless its code is taken. The code
// must already be canonical. It reports whether a row was written.
func (s *Store) InsertItemIfCodeFree(ctx context.Context, it domain.Item) (bool, error) {
	uploaded := toMillis(it.UploadedAt)
	if uploaded == 0 {
		uploaded = s.nowMillis()
	}
	res, err := s.exec(ctx, "insert_item", `
		INSERT INTO items (code, title, description, media_kind, file_id, poster_file_id,
			uploader_id, uploaded_at, views)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT (code) DO NOTHING`,
		it.Code, it.Title, it.Description, string(it.Payload.Kind), it.Payload.FileID,
		it.PosterFileID, it.UploaderID, uploaded)
	if err != nil {
		return false, err
	}
	return affected(res) == 1, nil
}

// ItemByCode returns domain.ErrNotFound when the code is unknown.
func (s *Store) ItemByCode(ctx context.Context, code string) (domain.Item, error) {
	var row itemRow
	if err := s.get(ctx, "item_by_code", &row, `SELECT `+itemColumns+` FROM items WHERE code = ?`, code); err != nil {
		return domain.Item{}, err
	}
	return row.domain(), nil
}

// ItemsByRecency lists items newest first.
func (s *Store) ItemsByRecency(ctx context.Context, limit, offset int) ([]domain.Item, error) {
	var rows []itemRow
	err := s.selectAll(ctx, "items_by_recency", &rows, `
		SELECT `+itemColumns+` FROM items
		ORDER BY uploaded_at DESC, code ASC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	return items(rows), nil
}

// ItemsByViews ranks by views, then most recent upload, then code.
func (s *Store) ItemsByViews(ctx context.Context, limit, offset int) ([]domain.Item, error) {
	var rows []itemRow
	err := s.selectAll(ctx, "items_by_views", &rows, `
		SELECT `+itemColumns+` FROM items
		ORDER BY views DESC, uploaded_at DESC, code ASC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	return items(rows), nil
}

func (s *Store) CountItems(ctx context.Context) (int, error) {
	var n int
	err := s.get(ctx, "count_items", &n, `SELECT COUNT(*) FROM items`)
	return n, err
}

// TotalViews sums views across the catalog.
func (s *Store) TotalViews(ctx context.Context) (int64, error) {
	var n int64
	err := s.get(ctx, "total_views", &n, `SELECT COALESCE(SUM(views), 0) FROM items`)
	return n, err
}

// IncrementItemViews adds one view in a single statement and returns
// domain.ErrNotFound for an unknown code.
func (s *Store) IncrementItemViews(ctx context.Context, code string) error {
	res, err := s.exec(ctx, "increment_views", `UPDATE items SET views = views + 1 WHERE code = ?`, code)
	if err != nil {
		return err
	}
	if affected(res) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteItemByCode removes the item and returns what was deleted.
func (s *Store) DeleteItemByCode(ctx context.Context, code string) (domain.Item, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Item{}, s.fail(ctx, "delete_item", err)
	}
	defer func() { _ = tx.Rollback() }()

	var row itemRow
	if err := tx.GetContext(ctx, &row, tx.Rebind(`SELECT `+itemColumns+` FROM items WHERE code = ?`), code); err != nil {
		if err == sql.ErrNoRows {
			return domain.Item{}, domain.ErrNotFound
		}
		return domain.Item{}, s.fail(ctx, "delete_item", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM items WHERE code = ?`), code); err != nil {
		return domain.Item{}, s.fail(ctx, "delete_item", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Item{}, s.fail(ctx, "delete_item", err)
	}
	return row.domain(), nil
}

// SetItemDistribution records where the item was posted.
func (s *Store) SetItemDistribution(ctx context.Context, code string, ref domain.MessageRef) error {
	res, err := s.exec(ctx, "set_item_distribution",
		`UPDATE items SET dist_chat_id = ?, dist_message_id = ? WHERE code = ?`,
		ref.ChatID, ref.MessageID, code)
	if err != nil {
		return err
	}
	if affected(res) == 0 {
		return domain.ErrNotFound
	}
	return nil
}
