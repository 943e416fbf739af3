package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

type noteRepo struct{ s *Store }

func (r noteRepo) Create(_ context.Context, n *models.Note) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[n.UserID]; !ok {
		return 0, fmt.Errorf("db error: user %d does not exist", n.UserID)
	}
	r.s.noteSeq++
	n.ID = r.s.noteSeq
	n.ServerUpdatedAt = r.s.stamp()
	c := *n
	r.s.notes[n.ID] = &c
	return n.ID, nil
}

func (r noteRepo) Update(_ context.Context, n *models.Note) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.notes[n.ID]
	if !ok {
		return false, nil
	}
	cur.Title = n.Title
	cur.Content = n.Content
	cur.ColorCode = n.ColorCode
	cur.ServerUpdatedAt = r.s.stamp()
	return true, nil
}

func (r noteRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notes[id]; !ok {
		return false, nil
	}
	delete(r.s.notes, id)
	return true, nil
}

func (r noteRepo) GetByID(_ context.Context, id int64) (*models.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *n
	return &c, nil
}

func (r noteRepo) SelectUpdatedSince(_ context.Context, since time.Time) ([]*models.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.Note, 0)
	for _, n := range r.s.notes {
		if n.ServerUpdatedAt.After(since) {
			c := *n
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].ServerUpdatedAt.Equal(result[j].ServerUpdatedAt) {
			return result[i].ServerUpdatedAt.Before(result[j].ServerUpdatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
