// Package notes stores general notes. Notes are shared for writing, so Update
// and Delete match on id alone.
package notes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Note) (int64, error)
	Update(ctx context.Context, n *models.Note) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Note, error)
	SelectUpdatedSince(ctx context.Context, since time.Time) ([]*models.Note, error)
}
