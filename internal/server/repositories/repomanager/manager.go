package repomanager

import (
	"context"

	"github.com/dmitrijs2005/schedsync/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/appointments"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/backups"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/notes"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/tombstones"
)

// RepositoryManager vends the repositories of one store. Repositories
// obtained from the manager passed to an InTx callback share its transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Accounts() accounts.Repository
	Appointments() appointments.Repository
	Notes() notes.Repository
	RefreshTokens() refreshtokens.Repository
	Backups() backups.Repository
	Tombstones() tombstones.Repository

	// InTx runs fn inside one store transaction. Nested calls reuse the
	// outer transaction.
	InTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error

	Close() error
}
