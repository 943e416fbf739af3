// Package repomanager provides RepositoryManager for PostgreSQL, wiring the
// per-kind repositories to one connection pool or transaction and running the
// goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/schedsync/internal/dbx"
	"github.com/dmitrijs2005/schedsync/internal/server/migrations"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/appointments"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/backups"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/notes"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/tombstones"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

type PostgresRepositoryManager struct {
	pool *sql.DB
	db   dbx.DBTX
	inTx bool
}

// NewPostgresRepositoryManager binds a manager to an open pool.
func NewPostgresRepositoryManager(pool *sql.DB) (RepositoryManager, error) {
	return &PostgresRepositoryManager{pool: pool, db: pool}, nil
}

// OpenPostgres opens a pgx-backed pool for dsn and checks connectivity.
func OpenPostgres(ctx context.Context, dsn string) (RepositoryManager, error) {
	pool, err := sqlOpen(DriverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return NewPostgresRepositoryManager(pool)
}

func (m *PostgresRepositoryManager) Accounts() accounts.Repository {
	return accounts.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) Appointments() appointments.Repository {
	return appointments.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) Notes() notes.Repository {
	return notes.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) Backups() backups.Repository {
	return backups.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) Tombstones() tombstones.Repository {
	return tombstones.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	if m.inTx {
		return fn(ctx, m)
	}
	return dbx.WithTx(ctx, m.pool, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &PostgresRepositoryManager{pool: m.pool, db: tx, inTx: true})
	})
}

func (m *PostgresRepositoryManager) Close() error {
	return m.pool.Close()
}

// sqlOpen and gooseUpContext are seams for tests.
var (
	sqlOpen        = sql.Open
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
)

// RunMigrations applies the embedded migrations to the pool.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(DriverName); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.pool, ".")
}
