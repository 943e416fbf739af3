package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

type refreshTokenRepo struct{ s *Store }

func (r refreshTokenRepo) Create(_ context.Context, userID int64, token string, validity time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.refreshTokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: r.s.now().Add(validity)}
	return nil
}

func (r refreshTokenRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rt, ok := r.s.refreshTokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *rt
	return &c, nil
}

func (r refreshTokenRepo) Delete(_ context.Context, token string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.refreshTokens[token]; !ok {
		return false, nil
	}
	delete(r.s.refreshTokens, token)
	return true, nil
}

func (r refreshTokenRepo) DeleteExpired(_ context.Context, userID int64, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for token, rt := range r.s.refreshTokens {
		if rt.UserID == userID && rt.Expires.Before(now) {
			delete(r.s.refreshTokens, token)
			n++
		}
	}
	return n, nil
}
