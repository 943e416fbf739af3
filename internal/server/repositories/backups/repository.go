// Package backups stores metadata of database backups whose bodies live in
// object storage.
package backups

import (
	"context"

	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, b *models.Backup) (*models.Backup, error)
	// List returns backups newest first.
	List(ctx context.Context) ([]*models.Backup, error)
	GetByID(ctx context.Context, id int64) (*models.Backup, error)
}
