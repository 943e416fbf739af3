package grpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/dmitrijs2005/schedsync/internal/server/auth"
	"github.com/dmitrijs2005/schedsync/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*protocol.PingResponse, error) {
	return &protocol.PingResponse{Status: "ok"}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *protocol.LoginRequest) (*protocol.LoginResponse, error) {

	account, tokens, err := s.auth.Login(ctx, req.Username, req.Password)

	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "Invalid credentials")
		}
		s.logger.Error(ctx, "login failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &protocol.LoginResponse{
		User:         services.AccountSummary(account),
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *protocol.RefreshRequest) (*protocol.RefreshResponse, error) {
	if req.RefreshToken == "" {
		return nil, status.Error(codes.InvalidArgument, "Invalid request")
	}

	pair, err := s.auth.RefreshToken(ctx, req.RefreshToken)
	switch {
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return nil, status.Error(codes.Unauthenticated, "Refresh token expired")
	case errors.Is(err, common.ErrorUnauthorized):
		return nil, status.Error(codes.Unauthenticated, "Invalid refresh token")
	case err != nil:
		s.logger.Error(ctx, "refresh failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &protocol.RefreshResponse{Token: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) Sync(ctx context.Context, req *json.RawMessage) (*protocol.SyncResponse, error) {
	accountID, ok := auth.AccountIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "Token missing")
	}

	resp, err := s.sync.Sync(ctx, accountID, *req)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, "internal error")
	}
	return resp, nil
}
