package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/schedsync/internal/client/migrations"
	"github.com/dmitrijs2005/schedsync/internal/client/repositories/appointments"
	"github.com/dmitrijs2005/schedsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/schedsync/internal/client/repositories/notes"
	"github.com/dmitrijs2005/schedsync/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories groups the local repositories over one handle, either the
// database itself or a transaction opened by InTx.
type Repositories struct {
	db           *sql.DB
	Metadata     metadata.Repository
	Appointments appointments.Repository
	Notes        notes.Repository
}

func newRepositories(db *sql.DB, h dbx.DBTX) *Repositories {
	return &Repositories{
		db:           db,
		Metadata:     metadata.NewSQLiteRepository(h),
		Appointments: appointments.NewSQLiteRepository(h),
		Notes:        notes.NewSQLiteRepository(h),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a :memory: database exists per connection
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return newRepositories(db, db), nil
}

// InTx runs fn with repositories bound to a single transaction. fn must not
// touch the receiver's repositories while it runs.
func (r *Repositories) InTx(ctx context.Context, fn func(ctx context.Context, tx *Repositories) error) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, newRepositories(r.db, tx))
	})
}

// Snapshot writes a consistent copy of the database to path.
func (r *Repositories) Snapshot(ctx context.Context, path string) error {
	if _, err := r.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return nil
}

func (r *Repositories) Close() error {
	return r.db.Close()
}
