// Package grpc exposes the sync service over gRPC with a JSON codec, next to
// the HTTP API. Requests and replies are the same protocol types.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/schedsync/internal/logging"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/dmitrijs2005/schedsync/internal/rpc"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
	"github.com/dmitrijs2005/schedsync/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.Account, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Authenticate(token string) (int64, error)
}

type SyncService interface {
	Sync(ctx context.Context, accountID int64, body []byte) (*protocol.SyncResponse, error)
}

type GRPCServer struct {
	address   string
	appSecret string
	auth      AuthService
	sync      SyncService
	logger    logging.Logger
	health    *health.Server
}

func NewGRPCServer(address, appSecret string, l logging.Logger, a AuthService, s SyncService) *GRPCServer {
	return &GRPCServer{
		address:   address,
		appSecret: appSecret,
		auth:      a,
		sync:      s,
		logger:    l.With("module", "grpc_server"),
		health:    health.NewServer(),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessInterceptor))
	srv.RegisterService(&syncServiceDesc, s)
	healthpb.RegisterHealthServer(srv, s.health)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.health.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
