// Package tombstones records deletions so that the pull phase can report them
// to other clients.
package tombstones

import (
	"context"
	"time"
)

type Repository interface {
	// Record notes that entity kind/id was deleted now.
	Record(ctx context.Context, kind string, id int64) error
	// SelectSince returns ids of kind deleted strictly after since, oldest first.
	SelectSince(ctx context.Context, kind string, since time.Time) ([]int64, error)
}
