package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/schedsync/internal/client/client"
	"github.com/dmitrijs2005/schedsync/internal/client/models"
	"github.com/dmitrijs2005/schedsync/internal/logging"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
)

func loggedIn(t *testing.T, repos *client.Repositories) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repos.Metadata.Set(ctx, models.MetaAccessToken, "a1"))
	require.NoError(t, repos.Metadata.Set(ctx, models.MetaRefreshToken, "r1"))
	require.NoError(t, repos.Metadata.Set(ctx, models.MetaAccountID, "1"))
	require.NoError(t, repos.Metadata.Set(ctx, models.MetaUsername, "alice"))
}

func tempID(t *testing.T, s string) protocol.TempID {
	t.Helper()
	var id protocol.TempID
	require.NoError(t, json.Unmarshal([]byte(`"`+s+`"`), &id))
	return id
}

func TestSync_NotLoggedIn(t *testing.T) {
	fc := &fakeClient{}
	_, err := NewSyncService(fc, newRepos(t), logging.Nop{}).Sync(context.Background())
	require.ErrorIs(t, err, client.ErrNotLoggedIn)
	assert.Empty(t, fc.syncReqs)
}

func TestSync_FirstSyncSendsEpochAndNoChanges(t *testing.T) {
	repos := newRepos(t)
	loggedIn(t, repos)
	fc := &fakeClient{syncResp: protocol.NewSyncResponse("2024-05-01 10:00:00")}

	report, err := NewSyncService(fc, repos, logging.Nop{}).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01 10:00:00", report.Watermark)

	require.Len(t, fc.syncReqs, 1)
	assert.Equal(t, protocol.EpochWatermark, fc.syncReqs[0].LastSyncTimestamp)
	assert.Nil(t, fc.syncReqs[0].Changes)

	w, err := repos.Metadata.Get(context.Background(), models.MetaWatermark)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01 10:00:00", w)
}

func TestSync_BuildsChangeSetAndAppliesReply(t *testing.T) {
	repos := newRepos(t)
	loggedIn(t, repos)
	ctx := context.Background()
	require.NoError(t, repos.Metadata.Set(ctx, models.MetaWatermark, "2024-04-30 09:00:00"))

	// created, updated and deleted appointments plus one created note
	fresh := &models.Appointment{LocalID: "new-1", AppointmentFields: protocol.AppointmentFields{Title: "Checkup", AppointmentDate: "2024-05-02"}}
	require.NoError(t, repos.Appointments.Insert(ctx, fresh))
	edited := &models.Appointment{LocalID: "old-1", AppointmentFields: protocol.AppointmentFields{Title: "Standup", AppointmentDate: "2024-05-03"}}
	require.NoError(t, repos.Appointments.Insert(ctx, edited))
	require.NoError(t, repos.Appointments.AssignServerID(ctx, "old-1", 11))
	edited.Title = "Standup (moved)"
	require.NoError(t, repos.Appointments.Update(ctx, edited))
	gone := &models.Appointment{LocalID: "old-2", AppointmentFields: protocol.AppointmentFields{Title: "Lunch", AppointmentDate: "2024-05-04"}}
	require.NoError(t, repos.Appointments.Insert(ctx, gone))
	require.NoError(t, repos.Appointments.AssignServerID(ctx, "old-2", 12))
	require.NoError(t, repos.Appointments.MarkDeleted(ctx, "old-2"))
	note := &models.Note{LocalID: "note-1", NoteFields: protocol.NoteFields{Title: ptr("Shopping")}}
	require.NoError(t, repos.Notes.Insert(ctx, note))
	// a record another device already has on the server, about to be removed
	require.NoError(t, repos.Notes.UpsertFromServer(ctx, &models.Note{LocalID: "remote-1", ServerID: 40, NoteFields: protocol.NoteFields{Title: ptr("old")}}))

	resp := protocol.NewSyncResponse("2024-05-01 10:00:00")
	resp.Changes.Appointments.Created = []protocol.IDRemap{{TempID: tempID(t, "new-1"), ServerID: 21}}
	resp.Changes.Appointments.Updated = []protocol.AppointmentRecord{{
		ID:                21,
		UserID:            1,
		AppointmentFields: protocol.AppointmentFields{Title: "Checkup", AppointmentDate: "2024-05-02"},
		ServerUpdatedAt:   "2024-05-01 10:00:00",
		User:              protocol.AccountSummary{ID: 1, Username: "alice", ColorCode: "#ff0000"},
	}, {
		ID:                30,
		UserID:            2,
		AppointmentFields: protocol.AppointmentFields{Title: "Bob's party", AppointmentDate: "2024-05-10"},
		ServerUpdatedAt:   "2024-05-01 09:30:00",
		User:              protocol.AccountSummary{ID: 2, Username: "bob", ColorCode: "#0000ff"},
	}}
	resp.Changes.GeneralNotes.Created = []protocol.IDRemap{{TempID: tempID(t, "note-1"), ServerID: 41}, {TempID: tempID(t, "stranger"), ServerID: 99}}
	resp.Changes.GeneralNotes.Deleted = []int64{40}
	fc := &fakeClient{syncResp: resp}

	report, err := NewSyncService(fc, repos, logging.Nop{}).Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SyncReport{Pushed: 4, Remapped: 2, Pulled: 2, Removed: 1, Watermark: "2024-05-01 10:00:00"}, report)

	req := fc.syncReqs[0]
	assert.Equal(t, "2024-04-30 09:00:00", req.LastSyncTimestamp)
	require.NotNil(t, req.Changes.Appointments)
	require.Len(t, req.Changes.Appointments.Created, 1)
	assert.Equal(t, "new-1", req.Changes.Appointments.Created[0].ID)
	require.Len(t, req.Changes.Appointments.Updated, 1)
	assert.Equal(t, int64(11), req.Changes.Appointments.Updated[0].ID)
	assert.Equal(t, "Standup (moved)", req.Changes.Appointments.Updated[0].Title)
	assert.Equal(t, []int64{12}, req.Changes.Appointments.Deleted)
	require.NotNil(t, req.Changes.GeneralNotes)
	assert.Equal(t, "note-1", req.Changes.GeneralNotes.Created[0].ID)

	pending, err := repos.Appointments.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	list, err := repos.Appointments.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	byServer := map[int64]models.Appointment{}
	for _, a := range list {
		byServer[a.ServerID] = a
	}
	assert.Equal(t, "new-1", byServer[21].LocalID)
	assert.Equal(t, "#ff0000", byServer[21].Owner.ColorCode)
	assert.Equal(t, "Standup (moved)", byServer[11].Title)
	assert.Equal(t, "bob", byServer[30].Owner.Username)

	notes, err := repos.Notes.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, int64(41), notes[0].ServerID)
	assert.False(t, notes[0].Dirty)
}

func TestSync_FailureKeepsPendingAndWatermark(t *testing.T) {
	repos := newRepos(t)
	loggedIn(t, repos)
	ctx := context.Background()
	require.NoError(t, repos.Metadata.Set(ctx, models.MetaWatermark, "2024-04-30 09:00:00"))
	require.NoError(t, repos.Appointments.Insert(ctx, &models.Appointment{LocalID: "l1", AppointmentFields: protocol.AppointmentFields{Title: "x", AppointmentDate: "2024-05-02"}}))

	fc := &fakeClient{syncErr: client.ErrUnavailable}
	_, err := NewSyncService(fc, repos, logging.Nop{}).Sync(ctx)
	require.ErrorIs(t, err, client.ErrUnavailable)

	pending, err := repos.Appointments.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	w, err := repos.Metadata.Get(ctx, models.MetaWatermark)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-30 09:00:00", w)
}

func TestSync_PersistsRotatedTokensEvenOnFailure(t *testing.T) {
	repos := newRepos(t)
	loggedIn(t, repos)
	ctx := context.Background()

	fc := &fakeClient{rotate: []string{"a2", "r2"}, syncErr: errors.New("boom")}
	_, err := NewSyncService(fc, repos, logging.Nop{}).Sync(ctx)
	require.Error(t, err)

	access, err := repos.Metadata.Get(ctx, models.MetaAccessToken)
	require.NoError(t, err)
	refresh, err := repos.Metadata.Get(ctx, models.MetaRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "a2", access)
	assert.Equal(t, "r2", refresh)
}

// ---- against the real server ----

func TestSync_TwoDevicesConverge(t *testing.T) {
	url := newServer(t, true)
	ctx := context.Background()
	alice := newDevice(t, url, "alice", "s3cret")
	bob := newDevice(t, url, "bob", "hunter2")

	checkup, err := alice.appointments.Add(ctx, protocol.AppointmentFields{Title: "Checkup", AppointmentDate: "2024-05-02", StartTime: ptr("09:00")})
	require.NoError(t, err)
	_, err = alice.notes.Add(ctx, protocol.NoteFields{Title: ptr("Shopping"), ColorCode: ptr("#00ff00")})
	require.NoError(t, err)

	report, err := alice.sync.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pushed)
	assert.Equal(t, 2, report.Remapped)

	mine, err := alice.appointments.Get(ctx, checkup.LocalID)
	require.NoError(t, err)
	assert.NotZero(t, mine.ServerID)
	assert.False(t, mine.Dirty)
	assert.Equal(t, "alice", mine.Owner.Username)
	assert.Equal(t, "#ff0000", mine.Owner.ColorCode)

	// bob sees alice's appointment and the shared note
	_, err = bob.sync.Sync(ctx)
	require.NoError(t, err)
	bobs, err := bob.appointments.List(ctx)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, "Checkup", bobs[0].Title)
	assert.Equal(t, mine.ServerID, bobs[0].ServerID)
	assert.Equal(t, "09:00", *bobs[0].StartTime)

	// appointments stay read-only for other accounts, notes do not
	require.ErrorIs(t, bob.appointments.Delete(ctx, bobs[0].LocalID), ErrNotOwner)
	bobNotes, err := bob.notes.List(ctx)
	require.NoError(t, err)
	require.Len(t, bobNotes, 1)
	_, err = bob.notes.Update(ctx, bobNotes[0].LocalID, func(f *protocol.NoteFields) { f.Content = ptr("milk, eggs") })
	require.NoError(t, err)
	_, err = bob.sync.Sync(ctx)
	require.NoError(t, err)

	// alice removes her appointment and picks up bob's note edit
	require.NoError(t, alice.appointments.Delete(ctx, checkup.LocalID))
	_, err = alice.sync.Sync(ctx)
	require.NoError(t, err)
	aliceNotes, err := alice.notes.List(ctx)
	require.NoError(t, err)
	require.Len(t, aliceNotes, 1)
	require.NotNil(t, aliceNotes[0].Content)
	assert.Equal(t, "milk, eggs", *aliceNotes[0].Content)
	left, err := alice.appointments.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)

	// the tombstone reaches bob
	report, err = bob.sync.Sync(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.Removed, 1)
	bobs, err = bob.appointments.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bobs)
}
