// Package appointments declares the storage contract for shared appointments
// and its PostgreSQL implementation.
package appointments

import (
	"context"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

// Repository stores appointments. Reads are unrestricted; updates and deletes
// only touch rows owned by the given account.
type Repository interface {
	// Create inserts a for a.UserID and returns the assigned id. a.ID is ignored.
	Create(ctx context.Context, a *models.Appointment) (int64, error)

	// Update overwrites the fields of the row matching a.ID and a.UserID.
	// It reports false when no such row exists.
	Update(ctx context.Context, a *models.Appointment) (bool, error)

	// Delete removes the row matching id and ownerID and reports whether one was removed.
	Delete(ctx context.Context, id, ownerID int64) (bool, error)

	// GetByID returns common.ErrorNotFound when the row is absent.
	GetByID(ctx context.Context, id int64) (*models.Appointment, error)

	// SelectUpdatedSince returns every appointment with server_updated_at
	// strictly after since, joined with its owner, oldest first.
	SelectUpdatedSince(ctx context.Context, since time.Time) ([]*models.Appointment, error)
}
