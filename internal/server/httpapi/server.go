// Package httpapi serves the JSON API used by the mobile clients: login and
// token refresh, the sync endpoint, database backups and the public release
// download.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/logging"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/dmitrijs2005/schedsync/internal/server/blobstore"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
	"github.com/dmitrijs2005/schedsync/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.Account, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Authenticate(token string) (int64, error)
}

type SyncService interface {
	Sync(ctx context.Context, accountID int64, body []byte) (*protocol.SyncResponse, error)
}

type BackupService interface {
	Upload(ctx context.Context, body io.Reader, size int64, notes string) (*models.Backup, error)
	List(ctx context.Context) ([]protocol.Backup, error)
	Open(ctx context.Context, id int64) (io.ReadCloser, *models.Backup, *blobstore.ObjectInfo, error)
	PresignedURL(ctx context.Context, id int64) (string, error)
	Release(ctx context.Context) (io.ReadCloser, *blobstore.ObjectInfo, error)
	ReleaseName() string
}

type Options struct {
	Address         string
	AppSecret       string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

type HTTPServer struct {
	opts    Options
	logger  logging.Logger
	auth    AuthService
	sync    SyncService
	backups BackupService
}

func NewHTTPServer(opts Options, l logging.Logger, a AuthService, s SyncService, b BackupService) *HTTPServer {
	return &HTTPServer{
		opts:    opts,
		logger:  l.With("module", "http_server"),
		auth:    a,
		sync:    s,
		backups: b,
	}
}

// Router builds the handler tree. Every response carries CORS headers and
// is gzip-compressed when the client accepts it.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors)
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/", s.handleRelease)
	r.Get("/download", s.handleRelease)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAppSecret)
		if s.opts.MaxBodyBytes > 0 {
			r.Use(middleware.RequestSize(s.opts.MaxBodyBytes))
		}

		r.Get("/ping", s.handlePing)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(s.requireBearer)
			r.Post("/sync", s.handleSync)
			r.Post("/upload", s.handleUpload)
			r.Get("/list", s.handleList)
			r.Get("/backup/{id}/download", s.handleDownload)
			r.Get("/backup/{id}/url", s.handlePresignedURL)
		})
	})

	return gzhttp.GzipHandler(r)
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most ShutdownTimeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
