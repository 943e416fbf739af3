// Package notes persists the local copy of the account's general notes.
package notes

import (
	"context"

	"github.com/dmitrijs2005/schedsync/internal/client/models"
)

type Repository interface {
	Insert(ctx context.Context, n *models.Note) error
	Update(ctx context.Context, n *models.Note) error
	GetByLocalID(ctx context.Context, localID string) (*models.Note, error)
	List(ctx context.Context) ([]models.Note, error)
	MarkDeleted(ctx context.Context, localID string) error
	Pending(ctx context.Context) ([]models.Note, error)

	AssignServerID(ctx context.Context, localID string, serverID int64) error
	ClearDirty(ctx context.Context, localID string) error
	Purge(ctx context.Context, localID string) error
	UpsertFromServer(ctx context.Context, n *models.Note) error
	DeleteByServerID(ctx context.Context, serverID int64) error
}
