package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/schedsync/internal/client/client"
	"github.com/dmitrijs2005/schedsync/internal/client/config"
	"github.com/dmitrijs2005/schedsync/internal/client/services"
	"github.com/dmitrijs2005/schedsync/internal/logging"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
)

// ErrBackupsUnsupported is returned by backup commands on the gRPC transport.
var ErrBackupsUnsupported = errors.New("backups are only available over the http transport")

// backupClient is the part of the HTTP API the backup commands use.
type backupClient interface {
	UploadBackup(ctx context.Context, filename string, r io.Reader, notes string) (*protocol.UploadResponse, error)
	ListBackups(ctx context.Context) ([]protocol.Backup, error)
	DownloadBackup(ctx context.Context, id int64, w io.Writer) error
	BackupURL(ctx context.Context, id int64) (string, error)
}

// App bundles everything a command needs for one invocation.
type App struct {
	cfg     *config.Config
	log     logging.Logger
	repos   *client.Repositories
	api     client.Client
	backups backupClient

	Auth         services.AuthService
	Sync         services.SyncService
	Appointments services.AppointmentService
	Notes        services.NoteService
}

// NewApp opens the local database and connects the configured transport.
// Log output goes to logOut unless the config names a log file.
func NewApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	l := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		Writer:     logOut,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	})

	repos, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	a := &App{cfg: cfg, log: l, repos: repos}

	switch cfg.Transport {
	case config.TransportGRPC:
		c, err := client.NewGRPCClient(cfg.GRPCAddress, cfg.AppSecret)
		if err != nil {
			_ = repos.Close()
			return nil, err
		}
		a.api = c
	default:
		c := client.NewHTTPClient(cfg.ServerURL, cfg.AppSecret, cfg.Timeout)
		a.api = c
		a.backups = c
	}

	a.Auth = services.NewAuthService(a.api, repos)
	a.Sync = services.NewSyncService(a.api, repos, l)
	a.Appointments = services.NewAppointmentService(repos)
	a.Notes = services.NewNoteService(repos)

	l.Debug(ctx, "client started", "transport", cfg.Transport, "database", cfg.DatabasePath)
	return a, nil
}

// Close releases the transport and the database.
func (a *App) Close() error {
	return errors.Join(a.api.Close(), a.repos.Close())
}
