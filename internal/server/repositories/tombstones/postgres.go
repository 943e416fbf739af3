package tombstones

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, kind string, id int64) error {
	query := `
		INSERT INTO tombstones (entity, entity_id)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, kind, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SelectSince(ctx context.Context, kind string, since time.Time) ([]int64, error) {
	query := `
		SELECT entity_id
		FROM tombstones
		WHERE entity = $1 AND deleted_at > $2
		ORDER BY deleted_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, kind, since)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}
