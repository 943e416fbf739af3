// Package services contains application services for the calendar client.
// This file defines the authentication service: login against the server,
// restoring the stored session and logout.
package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/schedsync/internal/client/client"
	"github.com/dmitrijs2005/schedsync/internal/client/models"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
)

// Session is the account the local copy is signed in as.
type Session struct {
	AccountID int64
	Username  string
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and persist the token pair and
//     account identity in the local metadata table.
//   - Restore: load a persisted session into the API client; returns
//     client.ErrNotLoggedIn when there is none.
//   - Logout: forget the token pair. Local data and the watermark stay.
//   - Ping: check server liveness.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*protocol.AccountSummary, error)
	Restore(ctx context.Context) (*Session, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

type authService struct {
	client client.Client
	repos  *client.Repositories
}

func NewAuthService(c client.Client, repos *client.Repositories) AuthService {
	return &authService{client: c, repos: repos}
}

func (a *authService) Login(ctx context.Context, username, password string) (*protocol.AccountSummary, error) {
	resp, err := a.client.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	err = a.repos.InTx(ctx, func(ctx context.Context, tx *client.Repositories) error {
		values := map[string]string{
			models.MetaAccessToken:  resp.Token,
			models.MetaRefreshToken: resp.RefreshToken,
			models.MetaAccountID:    strconv.FormatInt(resp.User.ID, 10),
			models.MetaUsername:     resp.User.Username,
		}
		for k, v := range values {
			if err := tx.Metadata.Set(ctx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return &resp.User, nil
}

func (a *authService) Restore(ctx context.Context) (*Session, error) {
	return restoreSession(ctx, a.client, a.repos)
}

func restoreSession(ctx context.Context, c client.Client, repos *client.Repositories) (*Session, error) {
	get := func(key string) (string, error) { return repos.Metadata.Get(ctx, key) }

	access, err := get(models.MetaAccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := get(models.MetaRefreshToken)
	if err != nil {
		return nil, err
	}
	if access == "" && refresh == "" {
		return nil, client.ErrNotLoggedIn
	}
	rawID, err := get(models.MetaAccountID)
	if err != nil {
		return nil, err
	}
	username, err := get(models.MetaUsername)
	if err != nil {
		return nil, err
	}

	id, _ := strconv.ParseInt(rawID, 10, 64)
	c.SetTokens(access, refresh)
	return &Session{AccountID: id, Username: username}, nil
}

// saveTokens persists the client's token pair when a refresh rotated it.
func saveTokens(ctx context.Context, c client.Client, repos *client.Repositories, prevAccess, prevRefresh string) error {
	access, refresh := c.Tokens()
	if access == prevAccess && refresh == prevRefresh {
		return nil
	}
	if err := repos.Metadata.Set(ctx, models.MetaAccessToken, access); err != nil {
		return err
	}
	return repos.Metadata.Set(ctx, models.MetaRefreshToken, refresh)
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetTokens("", "")
	return a.repos.Metadata.Delete(ctx, models.MetaAccessToken, models.MetaRefreshToken)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
