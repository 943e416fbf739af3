package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock advances by one second on every call.
func tickingClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

func newStore(t *testing.T) (*Store, *models.Account, *models.Account) {
	t.Helper()
	s := New(WithClock(tickingClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))))
	ctx := context.Background()
	alice, err := s.Accounts().Create(ctx, &models.Account{Username: "alice", ColorCode: "#f00"})
	require.NoError(t, err)
	bob, err := s.Accounts().Create(ctx, &models.Account{Username: "bob", ColorCode: "#0f0"})
	require.NoError(t, err)
	return s, alice, bob
}

func TestAccounts(t *testing.T) {
	s, alice, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Accounts().Create(ctx, &models.Account{Username: "alice"})
	assert.Error(t, err)

	got, err := s.Accounts().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = s.Accounts().GetByID(ctx, 99)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAppointments_CreateStampsAndJoinsOwner(t *testing.T) {
	s, alice, _ := newStore(t)
	ctx := context.Background()

	a := &models.Appointment{ID: 500, UserID: alice.ID, Title: "Checkup", AppointmentDate: "2024-05-01"}
	id, err := s.Appointments().Create(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.False(t, a.ServerUpdatedAt.IsZero())

	got, err := s.Appointments().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, &models.Account{ID: alice.ID, Username: "alice", ColorCode: "#f00"}, got.Owner)
}

func TestAppointments_RejectsBadDate(t *testing.T) {
	s, alice, _ := newStore(t)

	_, err := s.Appointments().Create(context.Background(),
		&models.Appointment{UserID: alice.ID, Title: "x", AppointmentDate: "next tuesday"})
	assert.ErrorContains(t, err, "type date")
}

func TestAppointments_OwnerFilter(t *testing.T) {
	s, alice, bob := newStore(t)
	ctx := context.Background()
	repo := s.Appointments()

	id, err := repo.Create(ctx, &models.Appointment{UserID: alice.ID, Title: "Mine", AppointmentDate: "2024-05-01"})
	require.NoError(t, err)

	ok, err := repo.Update(ctx, &models.Appointment{ID: id, UserID: bob.ID, Title: "Stolen", AppointmentDate: "2024-05-01"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, id, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)

	ok, err = repo.Update(ctx, &models.Appointment{ID: id, UserID: alice.ID, Title: "Renamed", AppointmentDate: "2024-05-02"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, id, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAppointments_SelectUpdatedSinceIsStrict(t *testing.T) {
	s, alice, _ := newStore(t)
	ctx := context.Background()
	repo := s.Appointments()

	first := &models.Appointment{UserID: alice.ID, Title: "1", AppointmentDate: "2024-05-01"}
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)
	second := &models.Appointment{UserID: alice.ID, Title: "2", AppointmentDate: "2024-05-01"}
	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	got, err := repo.SelectUpdatedSince(ctx, time.Unix(0, 0))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Title)

	got, err = repo.SelectUpdatedSince(ctx, first.ServerUpdatedAt)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].Title)
}

func TestNotes_SharedWrite(t *testing.T) {
	s, alice, bob := newStore(t)
	ctx := context.Background()
	repo := s.Notes()

	title := "groceries"
	id, err := repo.Create(ctx, &models.Note{UserID: alice.ID, Title: &title})
	require.NoError(t, err)

	other := "hardware"
	ok, err := repo.Update(ctx, &models.Note{ID: id, UserID: bob.ID, Title: &other})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hardware", *got.Title)
	assert.Equal(t, alice.ID, got.UserID)

	ok, err = repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotes_UnknownOwnerFails(t *testing.T) {
	s := New()
	_, err := s.Notes().Create(context.Background(), &models.Note{UserID: 42})
	assert.Error(t, err)
}

func TestRefreshTokens(t *testing.T) {
	s, alice, _ := newStore(t)
	ctx := context.Background()
	repo := s.RefreshTokens()

	require.NoError(t, repo.Create(ctx, alice.ID, "live", time.Hour))
	require.NoError(t, repo.Create(ctx, alice.ID, "dead", -time.Hour))

	n, err := repo.DeleteExpired(ctx, alice.ID, time.Date(2024, 5, 1, 0, 0, 30, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rt, err := repo.Find(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, rt.UserID)

	deleted, err := repo.Delete(ctx, "live")
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = repo.Find(ctx, "live")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	deleted, err = repo.Delete(ctx, "live")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestBackups_NewestFirst(t *testing.T) {
	s := New(WithClock(tickingClock(time.Unix(0, 0))))
	ctx := context.Background()

	_, err := s.Backups().Create(ctx, &models.Backup{FilePath: "old.db"})
	require.NoError(t, err)
	b, err := s.Backups().Create(ctx, &models.Backup{FilePath: "new.db"})
	require.NoError(t, err)

	list, err := s.Backups().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new.db", list[0].FilePath)

	got, err := s.Backups().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "new.db", got.FilePath)

	_, err = s.Backups().GetByID(ctx, 77)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestTombstones(t *testing.T) {
	s := New(WithClock(tickingClock(time.Unix(0, 0))))
	ctx := context.Background()

	require.NoError(t, s.Tombstones().Record(ctx, models.KindNote, 1))
	require.NoError(t, s.Tombstones().Record(ctx, models.KindAppointment, 2))
	require.NoError(t, s.Tombstones().Record(ctx, models.KindNote, 3))

	ids, err := s.Tombstones().SelectSince(ctx, models.KindNote, time.Unix(0, 0))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)

	ids, err = s.Tombstones().SelectSince(ctx, models.KindNote, time.Unix(1, 0))
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
}

func TestInTx_PassesStore(t *testing.T) {
	s := New()
	called := false
	err := s.InTx(context.Background(), func(ctx context.Context, m repomanager.RepositoryManager) error {
		called = true
		assert.Same(t, s, m)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.NoError(t, s.RunMigrations(context.Background()))
	assert.NoError(t, s.Close())
}
