package grpc

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/dmitrijs2005/schedsync/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

type syncServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*protocol.PingResponse, error)
	Login(context.Context, *protocol.LoginRequest) (*protocol.LoginResponse, error)
	Refresh(context.Context, *protocol.RefreshRequest) (*protocol.RefreshResponse, error)
	Sync(context.Context, *json.RawMessage) (*protocol.SyncResponse, error)
}

func unaryHandler[Req, Resp any](fullMethod string, call func(syncServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(syncServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(syncServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var syncServiceDesc = grpc.ServiceDesc{
	ServiceName: rpc.ServiceName,
	HandlerType: (*syncServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unaryHandler(rpc.MethodPing, syncServiceServer.Ping)},
		{MethodName: "Login", Handler: unaryHandler(rpc.MethodLogin, syncServiceServer.Login)},
		{MethodName: "Refresh", Handler: unaryHandler(rpc.MethodRefresh, syncServiceServer.Refresh)},
		{MethodName: "Sync", Handler: unaryHandler(rpc.MethodSync, syncServiceServer.Sync)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "schedsync/v1/sync",
}
