// Package server initializes and runs the sync server: it opens the entity
// and blob stores, applies migrations, and runs the HTTP and gRPC listeners
// until a shutdown signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/schedsync/internal/logging"
	"github.com/dmitrijs2005/schedsync/internal/server/blobstore"
	"github.com/dmitrijs2005/schedsync/internal/server/config"
	"github.com/dmitrijs2005/schedsync/internal/server/httpapi"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/memory"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/schedsync/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/schedsync/internal/server/grpc"
)

var (
	openPostgres = repomanager.OpenPostgres
	newS3Store   = func(ctx context.Context, opts blobstore.S3Options) (blobstore.Store, error) {
		return blobstore.NewS3Store(ctx, opts)
	}
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	repos      repomanager.RepositoryManager
	httpServer *httpapi.HTTPServer
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(logging.Options{
		Level:      c.LogLevel,
		File:       c.LogFile,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 28,
	})

	repos, err := openRepositories(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	if err := seedAccounts(ctx, c, repos, logger); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("seed accounts error: %w", err)
	}

	blobs, err := openBlobStore(ctx, c)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	authService := services.NewAuthService(repos, c, logger)
	syncService := services.NewSyncService(services.NewReconciler(repos, logger, c.PropagateDeletes), logger)
	backupService := services.NewBackupService(repos, blobs, c.ReleaseObjectKey, logger)

	app := &App{config: c, logger: logger, repos: repos}
	app.httpServer = httpapi.NewHTTPServer(httpapi.Options{
		Address:         c.EndpointAddrHTTP,
		AppSecret:       c.AppSecret,
		MaxBodyBytes:    c.MaxRequestBodyBytes,
		ShutdownTimeout: c.ShutdownTimeout,
	}, logger, authService, syncService, backupService)
	if c.EndpointAddrGRPC != "" {
		app.grpcServer = gs.NewGRPCServer(c.EndpointAddrGRPC, c.AppSecret, logger, authService, syncService)
	}
	return app, nil
}

func openRepositories(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == config.MemoryDSN {
		return memory.New(), nil
	}
	return openPostgres(ctx, c.DatabaseDSN)
}

// seedAccounts provisions c.SeedAccounts into a fresh in-process store.
// Postgres deployments use cmd/accounts instead.
func seedAccounts(ctx context.Context, c *config.Config, repos repomanager.RepositoryManager, logger logging.Logger) error {
	if c.DatabaseDSN != config.MemoryDSN {
		if len(c.SeedAccounts) > 0 {
			logger.Warn(ctx, "seed_accounts ignored outside the memory store", "count", len(c.SeedAccounts))
		}
		return nil
	}
	accounts := services.NewAccountService(repos)
	for _, sa := range c.SeedAccounts {
		acc, err := accounts.Create(ctx, sa.Username, sa.Password, sa.ColorCode)
		if err != nil {
			return fmt.Errorf("account %q: %w", sa.Username, err)
		}
		logger.Info(ctx, "seeded account", "username", acc.Username, "account_id", acc.ID)
	}
	return nil
}

func openBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	if c.S3BaseEndpoint == config.MemoryEndpoint {
		return blobstore.NewMemoryStore(), nil
	}
	return newS3Store(ctx, blobstore.S3Options{
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
		Region:    c.S3Region,
		Endpoint:  c.S3BaseEndpoint,
		Bucket:    c.S3Bucket,
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled, a signal arrives or a listener fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.httpServer.Run(ctx)
	})
	if app.grpcServer != nil {
		g.Go(func() error {
			return app.grpcServer.Run(ctx)
		})
	}

	err := g.Wait()
	if cerr := app.repos.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
