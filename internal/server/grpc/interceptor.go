package grpc

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/rpc"
	"github.com/dmitrijs2005/schedsync/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// accessInterceptor checks the app secret on every sync service method and
// the bearer token on Sync. The health service is left open.
func (s *GRPCServer) accessInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !strings.HasPrefix(info.FullMethod, "/"+rpc.ServiceName+"/") {
		return handler(ctx, req)
	}

	md, _ := metadata.FromIncomingContext(ctx)

	secret := firstValue(md, common.AppSecretHeaderName)
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.appSecret)) != 1 {
		return nil, status.Error(codes.PermissionDenied, "Unauthorized Application")
	}

	if info.FullMethod == rpc.MethodSync {
		header := firstValue(md, common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			return nil, status.Error(codes.Unauthenticated, "Token missing")
		}
		accountID, err := s.auth.Authenticate(strings.TrimPrefix(header, common.BearerPrefix))
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				return nil, status.Error(codes.Unauthenticated, "Token expired")
			}
			return nil, status.Error(codes.Unauthenticated, "Invalid token")
		}
		ctx = auth.WithAccountID(ctx, accountID)
	}

	return handler(ctx, req)
}
