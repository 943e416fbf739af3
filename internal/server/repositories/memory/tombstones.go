package memory

import (
	"context"
	"time"
)

type tombstoneRepo struct{ s *Store }

func (r tombstoneRepo) Record(_ context.Context, kind string, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.tombstones = append(r.s.tombstones, tombstone{kind: kind, id: id, deletedAt: r.s.stamp()})
	return nil
}

// SelectSince relies on tombstones being appended in time order.
func (r tombstoneRepo) SelectSince(_ context.Context, kind string, since time.Time) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := make([]int64, 0)
	for _, t := range r.s.tombstones {
		if t.kind == kind && t.deletedAt.After(since) {
			ids = append(ids, t.id)
		}
	}
	return ids, nil
}
