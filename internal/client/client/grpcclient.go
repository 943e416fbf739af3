package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/dmitrijs2005/schedsync/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

type GRPCClient struct {
	session
	endpointURL string
	appSecret   string
	conn        *grpc.ClientConn
}

func withHeaders(ctx context.Context, kv map[string]string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	for k, v := range kv {
		md.Set(k, v)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) withCredentials(ctx context.Context, method string) context.Context {
	headers := map[string]string{common.AppSecretHeaderName: c.appSecret}
	if method == rpc.MethodSync {
		access, _ := c.Tokens()
		headers[common.AuthorizationHeaderName] = common.BearerPrefix + access
	}
	return withHeaders(ctx, headers)
}

func (c *GRPCClient) credentialsInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	err := invoker(c.withCredentials(ctx, method), method, req, reply, cc, opts...)
	if err == nil || method != rpc.MethodSync {
		return err
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != tokenExpiredMessage {
		return err
	}

	_, refreshToken := c.Tokens()
	if refreshToken == "" {
		return err
	}

	var resp protocol.RefreshResponse
	if err := cc.Invoke(ctx, rpc.MethodRefresh, &protocol.RefreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return err
	}
	c.SetTokens(resp.Token, resp.RefreshToken)

	// tokens refreshed, retry with the new access token
	return invoker(c.withCredentials(ctx, method), method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults.
func NewGRPCClient(endpointURL, appSecret string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, appSecret: appSecret}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpc.CodecName)),
		grpc.WithUnaryInterceptor(c.credentialsInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	var resp protocol.PingResponse
	if err := c.conn.Invoke(ctx, rpc.MethodPing, &emptypb.Empty{}, &resp); err != nil {
		return c.mapError(err)
	}
	if resp.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) Login(ctx context.Context, username, password string) (*protocol.LoginResponse, error) {
	var resp protocol.LoginResponse
	err := c.conn.Invoke(ctx, rpc.MethodLogin, &protocol.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, c.mapError(err)
	}
	c.SetTokens(resp.Token, resp.RefreshToken)
	return &resp, nil
}

func (c *GRPCClient) Sync(ctx context.Context, req *protocol.SyncRequest) (*protocol.SyncResponse, error) {
	if access, _ := c.Tokens(); access == "" {
		return nil, ErrNotLoggedIn
	}
	var resp protocol.SyncResponse
	if err := c.conn.Invoke(ctx, rpc.MethodSync, req, &resp); err != nil {
		return nil, c.mapError(err)
	}
	return &resp, nil
}

func (c *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorValidation, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
