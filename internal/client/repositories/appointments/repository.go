// Package appointments persists the local copy of appointments together with
// the bookkeeping the client needs to push its edits: the server id once
// known, a dirty flag for unpushed edits and a deleted flag for removals
// still to be pushed.
package appointments

import (
	"context"

	"github.com/dmitrijs2005/schedsync/internal/client/models"
)

type Repository interface {
	// Insert stores a locally created appointment as dirty.
	Insert(ctx context.Context, a *models.Appointment) error
	// Update overwrites the editable fields of a.LocalID and marks it dirty.
	Update(ctx context.Context, a *models.Appointment) error
	GetByLocalID(ctx context.Context, localID string) (*models.Appointment, error)
	// List returns the visible appointments ordered by date and start time.
	List(ctx context.Context) ([]models.Appointment, error)
	// MarkDeleted removes a never-pushed row outright and flags a pushed one.
	MarkDeleted(ctx context.Context, localID string) error
	// Pending returns every dirty row, deleted ones included.
	Pending(ctx context.Context) ([]models.Appointment, error)

	AssignServerID(ctx context.Context, localID string, serverID int64) error
	ClearDirty(ctx context.Context, localID string) error
	Purge(ctx context.Context, localID string) error
	// UpsertFromServer applies a pulled record unless the local row is dirty.
	UpsertFromServer(ctx context.Context, a *models.Appointment) error
	DeleteByServerID(ctx context.Context, serverID int64) error
}
