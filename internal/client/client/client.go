package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/schedsync/internal/protocol"
)

// Client is the contract shared by the HTTP and gRPC transports.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Login(ctx context.Context, username, password string) (*protocol.LoginResponse, error)
	Sync(ctx context.Context, req *protocol.SyncRequest) (*protocol.SyncResponse, error)

	// SetTokens installs a token pair restored from local storage.
	SetTokens(accessToken, refreshToken string)
	// Tokens returns the current pair, which changes after a refresh.
	Tokens() (accessToken, refreshToken string)
}

// tokenExpiredMessage is what the server answers when only the access token
// needs refreshing.
const tokenExpiredMessage = "Token expired"

type session struct {
	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func (s *session) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

func (s *session) Tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}
