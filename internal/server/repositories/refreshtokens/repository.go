// Package refreshtokens keeps the opaque refresh tokens handed out at login.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

type Repository interface {
	// Create stores token for userID, valid until now+validity.
	Create(ctx context.Context, userID int64, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound for unknown tokens.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete reports whether token existed. A token is deleted at most once,
	// which makes rotation single-use.
	Delete(ctx context.Context, token string) (bool, error)

	// DeleteExpired drops every token of userID that expired before now.
	DeleteExpired(ctx context.Context, userID int64, now time.Time) (int64, error)
}
