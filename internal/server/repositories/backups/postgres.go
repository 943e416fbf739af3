package backups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, b *models.Backup) (*models.Backup, error) {
	query := `
		INSERT INTO app_backups (file_path, file_size, notes)
		VALUES ($1, $2, $3)
		RETURNING id, backup_date
	`
	if err := r.db.QueryRowContext(ctx, query, b.FilePath, b.FileSize, b.Notes).Scan(&b.ID, &b.BackupDate); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Backup, error) {
	query := `
		SELECT id, file_path, file_size, notes, backup_date
		FROM app_backups
		ORDER BY backup_date DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Backup, 0)
	for rows.Next() {
		b := &models.Backup{}
		if err := rows.Scan(&b.ID, &b.FilePath, &b.FileSize, &b.Notes, &b.BackupDate); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Backup, error) {
	query := `
		SELECT id, file_path, file_size, notes, backup_date
		FROM app_backups
		WHERE id = $1
	`
	b := &models.Backup{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.FilePath, &b.FileSize, &b.Notes, &b.BackupDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}
