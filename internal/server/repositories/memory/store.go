// Package memory is an in-process implementation of the entity store. It keeps
// the observable behaviour of the PostgreSQL store (id sequences, timestamps
// stamped on write, DATE checking, owner joins) and is used for
// database_dsn=memory and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/server/models"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/appointments"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/backups"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/notes"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/tombstones"
)

type tombstone struct {
	kind      string
	id        int64
	deletedAt time.Time
}

// Store holds all tables behind one mutex. Each method is atomic on its own;
// InTx gives no isolation between concurrent callers.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	accounts      map[int64]*models.Account
	appointments  map[int64]*models.Appointment
	notes         map[int64]*models.Note
	refreshTokens map[string]*models.RefreshToken
	backups       map[int64]*models.Backup
	tombstones    []tombstone

	accountSeq, appointmentSeq, noteSeq, backupSeq int64
}

type Option func(*Store)

// WithClock replaces time.Now as the source of stamped timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:           time.Now,
		accounts:      make(map[int64]*models.Account),
		appointments:  make(map[int64]*models.Appointment),
		notes:         make(map[int64]*models.Note),
		refreshTokens: make(map[string]*models.RefreshToken),
		backups:       make(map[int64]*models.Backup),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ repomanager.RepositoryManager = (*Store)(nil)

func (s *Store) RunMigrations(context.Context) error { return nil }
func (s *Store) Close() error                        { return nil }

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, m repomanager.RepositoryManager) error) error {
	return fn(ctx, s)
}

func (s *Store) Accounts() accounts.Repository {
	return accountRepo{s}
}

func (s *Store) Appointments() appointments.Repository {
	return appointmentRepo{s}
}

func (s *Store) Notes() notes.Repository {
	return noteRepo{s}
}

func (s *Store) RefreshTokens() refreshtokens.Repository {
	return refreshTokenRepo{s}
}

func (s *Store) Backups() backups.Repository {
	return backupRepo{s}
}

func (s *Store) Tombstones() tombstones.Repository {
	return tombstoneRepo{s}
}

// stamp returns the current store time in UTC with microsecond precision,
// like a timestamptz column.
func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
