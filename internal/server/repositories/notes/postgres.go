package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/dbx"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Note) (int64, error) {
	query := `
		INSERT INTO general_notes (user_id, title, content, color_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, server_updated_at
	`
	if err := r.db.QueryRowContext(ctx, query, n.UserID, n.Title, n.Content, n.ColorCode).
		Scan(&n.ID, &n.ServerUpdatedAt); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n.ID, nil
}

// Update rewrites title, content and colour of note n.ID regardless of who owns it.
func (r *PostgresRepository) Update(ctx context.Context, n *models.Note) (bool, error) {
	query := `
		UPDATE general_notes
		SET title = $1, content = $2, color_code = $3, server_updated_at = now()
		WHERE id = $4
	`
	res, err := r.db.ExecContext(ctx, query, n.Title, n.Content, n.ColorCode, n.ID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return rowsAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query := `
		DELETE FROM general_notes
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return rowsAffected(res)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	query := `
		SELECT id, user_id, title, content, color_code, server_updated_at
		FROM general_notes
		WHERE id = $1
	`
	n, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) SelectUpdatedSince(ctx context.Context, since time.Time) ([]*models.Note, error) {
	query := `
		SELECT id, user_id, title, content, color_code, server_updated_at
		FROM general_notes
		WHERE server_updated_at > $1
		ORDER BY server_updated_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func scanNote(s interface{ Scan(...any) error }) (*models.Note, error) {
	n := &models.Note{}
	var title, content, color sql.NullString
	if err := s.Scan(&n.ID, &n.UserID, &title, &content, &color, &n.ServerUpdatedAt); err != nil {
		return nil, err
	}
	n.Title = ptr(title)
	n.Content = ptr(content)
	n.ColorCode = ptr(color)
	return n, nil
}

func ptr(s sql.NullString) *string {
	if s.Valid {
		return &s.String
	}
	return nil
}

func rowsAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
