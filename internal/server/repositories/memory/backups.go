package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

type backupRepo struct{ s *Store }

func (r backupRepo) Create(_ context.Context, b *models.Backup) (*models.Backup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.backupSeq++
	b.ID = r.s.backupSeq
	b.BackupDate = r.s.stamp()
	c := *b
	r.s.backups[b.ID] = &c
	return b, nil
}

func (r backupRepo) List(_ context.Context) ([]*models.Backup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.Backup, 0, len(r.s.backups))
	for _, b := range r.s.backups {
		c := *b
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].BackupDate.Equal(result[j].BackupDate) {
			return result[i].BackupDate.After(result[j].BackupDate)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r backupRepo) GetByID(_ context.Context, id int64) (*models.Backup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.backups[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *b
	return &c, nil
}
