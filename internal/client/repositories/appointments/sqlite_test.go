package appointments

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/schedsync/internal/client/models"
	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/protocol"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE appointments (
  local_id          TEXT PRIMARY KEY,
  server_id         INTEGER UNIQUE,
  owner_id          INTEGER NOT NULL DEFAULT 0,
  owner_username    TEXT NOT NULL DEFAULT '',
  owner_color       TEXT NOT NULL DEFAULT '',
  title             TEXT NOT NULL,
  appointment_date  TEXT NOT NULL,
  start_time        TEXT,
  duration_minutes  INTEGER,
  notes             TEXT,
  recurrence_type   TEXT,
  server_updated_at TEXT NOT NULL DEFAULT '',
  dirty             INTEGER NOT NULL DEFAULT 0,
  deleted           INTEGER NOT NULL DEFAULT 0
);`)
	require.NoError(t, err)
	return db
}

func ptr[T any](v T) *T { return &v }

func local(id, title, date string) *models.Appointment {
	return &models.Appointment{
		LocalID: id,
		AppointmentFields: protocol.AppointmentFields{
			Title:           title,
			AppointmentDate: date,
		},
	}
}

func TestInsert_GetByLocalID_RoundTripsOptionalFields(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	a := local("l1", "Checkup", "2024-05-02")
	a.StartTime = ptr("09:30")
	a.DurationMinutes = ptr(int64(45))
	a.RecurrenceType = ptr("weekly")
	require.NoError(t, r.Insert(ctx, a))
	require.True(t, a.Dirty)

	got, err := r.GetByLocalID(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, "Checkup", got.Title)
	require.Equal(t, "09:30", *got.StartTime)
	require.Equal(t, int64(45), *got.DurationMinutes)
	require.Nil(t, got.Notes)
	require.Equal(t, "weekly", *got.RecurrenceType)
	require.Zero(t, got.ServerID)
	require.True(t, got.Dirty)
	require.False(t, got.Deleted)
}

func TestGetByLocalID_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.GetByLocalID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_OrdersByDateAndStart(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	late := local("a", "Late", "2024-05-03")
	noon := local("b", "Noon", "2024-05-02")
	noon.StartTime = ptr("12:00")
	early := local("c", "Early", "2024-05-02")
	early.StartTime = ptr("08:00")
	for _, a := range []*models.Appointment{late, noon, early} {
		require.NoError(t, r.Insert(ctx, a))
	}

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []string{"Early", "Noon", "Late"}, []string{got[0].Title, got[1].Title, got[2].Title})
}

func TestUpdate_MarksDirty_AndMissingRow(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	a := local("l1", "Checkup", "2024-05-02")
	require.NoError(t, r.Insert(ctx, a))
	require.NoError(t, r.AssignServerID(ctx, "l1", 10))

	a.Title = "Dentist"
	require.NoError(t, r.Update(ctx, a))

	got, err := r.GetByLocalID(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, "Dentist", got.Title)
	require.Equal(t, int64(10), got.ServerID)
	require.True(t, got.Dirty)

	require.ErrorIs(t, r.Update(ctx, local("missing", "x", "2024-05-02")), common.ErrorNotFound)
}

func TestMarkDeleted_UnpushedRowIsRemoved(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, local("l1", "Checkup", "2024-05-02")))
	require.NoError(t, r.MarkDeleted(ctx, "l1"))

	pending, err := r.Pending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestMarkDeleted_PushedRowIsFlagged(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, local("l1", "Checkup", "2024-05-02")))
	require.NoError(t, r.AssignServerID(ctx, "l1", 10))
	require.NoError(t, r.MarkDeleted(ctx, "l1"))

	_, err := r.GetByLocalID(ctx, "l1")
	require.ErrorIs(t, err, common.ErrorNotFound)

	pending, err := r.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.True(t, pending[0].Deleted)
	require.Equal(t, int64(10), pending[0].ServerID)

	require.ErrorIs(t, r.MarkDeleted(ctx, "l1"), common.ErrorNotFound)
}

func TestAssignServerID_ClearsDirty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, local("l1", "Checkup", "2024-05-02")))
	require.NoError(t, r.AssignServerID(ctx, "l1", 3))

	pending, err := r.Pending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestUpsertFromServer_InsertsThenUpdatesCleanRows(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	in := local("s1", "Checkup", "2024-05-02")
	in.ServerID = 5
	in.Owner = protocol.AccountSummary{ID: 2, Username: "bob", ColorCode: "#0000ff"}
	in.ServerUpdatedAt = "2024-05-01 10:00:00"
	require.NoError(t, r.UpsertFromServer(ctx, in))

	again := local("s2", "Checkup moved", "2024-05-03")
	again.ServerID = 5
	again.Owner = in.Owner
	again.ServerUpdatedAt = "2024-05-01 11:00:00"
	require.NoError(t, r.UpsertFromServer(ctx, again))

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "s1", got[0].LocalID)
	require.Equal(t, "Checkup moved", got[0].Title)
	require.Equal(t, "bob", got[0].Owner.Username)
	require.Equal(t, "2024-05-01 11:00:00", got[0].ServerUpdatedAt)
	require.False(t, got[0].Dirty)
}

func TestUpsertFromServer_KeepsDirtyLocalEdit(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, local("l1", "Mine", "2024-05-02")))
	require.NoError(t, r.AssignServerID(ctx, "l1", 5))
	edit := local("l1", "Mine edited", "2024-05-02")
	require.NoError(t, r.Update(ctx, edit))

	remote := local("s1", "Theirs", "2024-05-02")
	remote.ServerID = 5
	require.NoError(t, r.UpsertFromServer(ctx, remote))

	got, err := r.GetByLocalID(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, "Mine edited", got.Title)
	require.True(t, got.Dirty)
}

func TestClearDirty_Purge_DeleteByServerID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, local("l1", "One", "2024-05-02")))
	require.NoError(t, r.Insert(ctx, local("l2", "Two", "2024-05-02")))
	require.NoError(t, r.Insert(ctx, local("l3", "Three", "2024-05-02")))
	require.NoError(t, r.AssignServerID(ctx, "l3", 30))

	require.NoError(t, r.ClearDirty(ctx, "l1"))
	require.NoError(t, r.Purge(ctx, "l2"))
	require.NoError(t, r.DeleteByServerID(ctx, 30))
	require.NoError(t, r.DeleteByServerID(ctx, 999))

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "l1", got[0].LocalID)
	require.False(t, got[0].Dirty)
}

func TestList_DBErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	_, err := r.List(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to select appointments")

	err = r.Insert(context.Background(), local("l1", "x", "2024-05-02"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to insert appointment")
}
