package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/schedsync/internal/client/models"
	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/dbx"
)

const columns = `local_id, server_id, user_id, title, content, color_code, server_updated_at, dirty, deleted`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Note, error) {
	var (
		n                     models.Note
		serverID              sql.NullInt64
		title, content, color sql.NullString
	)
	if err := row.Scan(&n.LocalID, &serverID, &n.UserID, &title, &content, &color,
		&n.ServerUpdatedAt, &n.Dirty, &n.Deleted); err != nil {
		return nil, err
	}
	n.ServerID = serverID.Int64
	if title.Valid {
		n.Title = &title.String
	}
	if content.Valid {
		n.Content = &content.String
	}
	if color.Valid {
		n.ColorCode = &color.String
	}
	return &n, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	result := make([]models.Note, 0)
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) exec(ctx context.Context, what, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to %s note: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, n *models.Note) error {
	var serverID any
	if n.ServerID != 0 {
		serverID = n.ServerID
	}
	_, err := r.exec(ctx, "insert", `INSERT INTO general_notes (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, 0)`,
		n.LocalID, serverID, n.UserID, nullable(n.Title), nullable(n.Content), nullable(n.ColorCode), n.ServerUpdatedAt)
	if err == nil {
		n.Dirty = true
	}
	return err
}

func (r *SQLiteRepository) Update(ctx context.Context, n *models.Note) error {
	affected, err := r.exec(ctx, "update", `UPDATE general_notes SET title = ?, content = ?, color_code = ?, dirty = 1
		WHERE local_id = ? AND deleted = 0`,
		nullable(n.Title), nullable(n.Content), nullable(n.ColorCode), n.LocalID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	n.Dirty = true
	return nil
}

func (r *SQLiteRepository) GetByLocalID(ctx context.Context, localID string) (*models.Note, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM general_notes WHERE local_id = ? AND deleted = 0`, localID)
	n, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Note, error) {
	return r.query(ctx, `SELECT `+columns+` FROM general_notes WHERE deleted = 0 ORDER BY rowid`)
}

func (r *SQLiteRepository) MarkDeleted(ctx context.Context, localID string) error {
	affected, err := r.exec(ctx, "delete", `DELETE FROM general_notes WHERE local_id = ? AND server_id IS NULL`, localID)
	if err != nil || affected > 0 {
		return err
	}
	affected, err = r.exec(ctx, "delete", `UPDATE general_notes SET deleted = 1, dirty = 1 WHERE local_id = ? AND deleted = 0`, localID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) Pending(ctx context.Context) ([]models.Note, error) {
	return r.query(ctx, `SELECT `+columns+` FROM general_notes WHERE dirty = 1 ORDER BY rowid`)
}

func (r *SQLiteRepository) AssignServerID(ctx context.Context, localID string, serverID int64) error {
	_, err := r.exec(ctx, "remap", `UPDATE general_notes SET server_id = ?, dirty = 0 WHERE local_id = ?`, serverID, localID)
	return err
}

func (r *SQLiteRepository) ClearDirty(ctx context.Context, localID string) error {
	_, err := r.exec(ctx, "update", `UPDATE general_notes SET dirty = 0 WHERE local_id = ?`, localID)
	return err
}

func (r *SQLiteRepository) Purge(ctx context.Context, localID string) error {
	_, err := r.exec(ctx, "purge", `DELETE FROM general_notes WHERE local_id = ?`, localID)
	return err
}

func (r *SQLiteRepository) UpsertFromServer(ctx context.Context, n *models.Note) error {
	_, err := r.exec(ctx, "upsert", `INSERT INTO general_notes (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0)
		ON CONFLICT(server_id) DO UPDATE SET
			user_id = excluded.user_id,
			title = excluded.title,
			content = excluded.content,
			color_code = excluded.color_code,
			server_updated_at = excluded.server_updated_at
		WHERE general_notes.dirty = 0`,
		n.LocalID, n.ServerID, n.UserID, nullable(n.Title), nullable(n.Content), nullable(n.ColorCode), n.ServerUpdatedAt)
	return err
}

func (r *SQLiteRepository) DeleteByServerID(ctx context.Context, serverID int64) error {
	_, err := r.exec(ctx, "delete", `DELETE FROM general_notes WHERE server_id = ?`, serverID)
	return err
}
