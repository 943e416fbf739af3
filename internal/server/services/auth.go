package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/logging"
	"github.com/dmitrijs2005/schedsync/internal/server/auth"
	"github.com/dmitrijs2005/schedsync/internal/server/config"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived bearer token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService verifies credentials and issues tokens. It is the boundary
// that turns a request into a verified account id for the sync core.
type AuthService struct {
	repomanager                  repomanager.RepositoryManager
	log                          logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

func NewAuthService(m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *AuthService {
	return &AuthService{
		repomanager:                  m,
		log:                          log.With("module", "auth"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// Login checks username and password. Unknown users and wrong passwords both
// yield common.ErrorUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Account, *TokenPair, error) {
	account, err := s.repomanager.Accounts().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		s.log.Error(ctx, "login lookup failed", "username", username, "error", err)
		return nil, nil, common.ErrorInternal
	}
	if !auth.CheckPassword(account.PasswordHash, password) {
		return nil, nil, common.ErrorUnauthorized
	}

	if n, err := s.repomanager.RefreshTokens().DeleteExpired(ctx, account.ID, s.now()); err != nil {
		s.log.Warn(ctx, "expired refresh tokens not purged", "account_id", account.ID, "error", err)
	} else if n > 0 {
		s.log.Debug(ctx, "expired refresh tokens purged", "account_id", account.ID, "count", n)
	}

	pair, err := s.generateTokenPair(ctx, s.repomanager, account.ID)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info(ctx, "login", "account_id", account.ID)
	return account, pair, nil
}

// RefreshToken rotates refreshToken inside one transaction and returns a new
// pair. Unknown or already rotated tokens yield common.ErrorUnauthorized and
// expired ones common.ErrRefreshTokenExpired.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair
	err := s.repomanager.InTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		token, err := tx.RefreshTokens().Find(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error searching refresh token: %w", err)
		}
		if token.Expires.Before(s.now()) {
			return common.ErrRefreshTokenExpired
		}

		deleted, err := tx.RefreshTokens().Delete(ctx, refreshToken)
		if err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		if !deleted {
			// another call rotated it between Find and Delete
			return common.ErrorUnauthorized
		}
		pair, err = s.generateTokenPair(ctx, tx, token.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Authenticate resolves a bearer token to an account id.
func (s *AuthService) Authenticate(token string) (int64, error) {
	return auth.GetAccountIDFromToken(token, s.jwtSecret)
}

func (s *AuthService) generateTokenPair(ctx context.Context, m repomanager.RepositoryManager, accountID int64) (*TokenPair, error) {
	access, err := auth.GenerateToken(accountID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := m.RefreshTokens().Create(ctx, accountID, refresh, s.refreshTokenValidityDuration); err != nil {
		s.log.Error(ctx, "storing refresh token failed", "account_id", accountID, "error", err)
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
