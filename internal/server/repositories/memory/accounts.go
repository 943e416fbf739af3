package memory

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

type accountRepo struct{ s *Store }

func (r accountRepo) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.accounts {
		if existing.Username == a.Username {
			return nil, fmt.Errorf("db error: duplicate username %q", a.Username)
		}
	}
	r.s.accountSeq++
	a.ID = r.s.accountSeq
	a.CreatedAt = r.s.stamp()
	c := *a
	r.s.accounts[a.ID] = &c
	return a, nil
}

func (r accountRepo) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.accounts {
		if a.Username == username {
			c := *a
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r accountRepo) GetByID(_ context.Context, id int64) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *a
	return &c, nil
}
