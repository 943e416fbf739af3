package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/schedsync/internal/client/client"
	"github.com/dmitrijs2005/schedsync/internal/client/models"
	"github.com/dmitrijs2005/schedsync/internal/logging"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/google/uuid"
)

// SyncReport summarises one round trip.
type SyncReport struct {
	Pushed    int
	Remapped  int
	Pulled    int
	Removed   int
	Watermark string
}

type SyncService interface {
	Sync(ctx context.Context) (*SyncReport, error)
}

type syncService struct {
	client client.Client
	repos  *client.Repositories
	logger logging.Logger
}

func NewSyncService(c client.Client, repos *client.Repositories, l logging.Logger) SyncService {
	return &syncService{client: c, repos: repos, logger: l.With("module", "sync")}
}

// outbox is the pending local state of one sync, keyed the way the reply
// refers back to it.
type outbox struct {
	req          protocol.SyncRequest
	appointments map[string]models.Appointment
	notes        map[string]models.Note
	pushed       int
}

func (s *syncService) collect(ctx context.Context) (*outbox, error) {
	watermark, err := s.repos.Metadata.Get(ctx, models.MetaWatermark)
	if err != nil {
		return nil, err
	}
	if watermark == "" {
		watermark = protocol.EpochWatermark
	}

	pendingA, err := s.repos.Appointments.Pending(ctx)
	if err != nil {
		return nil, err
	}
	pendingN, err := s.repos.Notes.Pending(ctx)
	if err != nil {
		return nil, err
	}

	out := &outbox{
		appointments: make(map[string]models.Appointment, len(pendingA)),
		notes:        make(map[string]models.Note, len(pendingN)),
	}

	ac := &protocol.EntityChanges[protocol.NewAppointment, protocol.AppointmentUpdate]{}
	for _, a := range pendingA {
		out.appointments[a.LocalID] = a
		switch {
		case a.ServerID == 0:
			ac.Created = append(ac.Created, protocol.NewAppointment{ID: a.LocalID, AppointmentFields: a.AppointmentFields})
		case a.Deleted:
			ac.Deleted = append(ac.Deleted, a.ServerID)
		default:
			ac.Updated = append(ac.Updated, protocol.AppointmentUpdate{ID: a.ServerID, AppointmentFields: a.AppointmentFields})
		}
	}

	nc := &protocol.EntityChanges[protocol.NewNote, protocol.NoteUpdate]{}
	for _, n := range pendingN {
		out.notes[n.LocalID] = n
		switch {
		case n.ServerID == 0:
			nc.Created = append(nc.Created, protocol.NewNote{ID: n.LocalID, NoteFields: n.NoteFields})
		case n.Deleted:
			nc.Deleted = append(nc.Deleted, n.ServerID)
		default:
			nc.Updated = append(nc.Updated, protocol.NoteUpdate{ID: n.ServerID, NoteFields: n.NoteFields})
		}
	}

	out.req.LastSyncTimestamp = watermark
	if !ac.IsEmpty() || !nc.IsEmpty() {
		out.req.Changes = &protocol.ChangeSet{}
		if !ac.IsEmpty() {
			out.req.Changes.Appointments = ac
		}
		if !nc.IsEmpty() {
			out.req.Changes.GeneralNotes = nc
		}
	}
	out.pushed = len(pendingA) + len(pendingN)
	return out, nil
}

// Sync pushes pending local edits and applies the reply in one local
// transaction. On failure the previous watermark and every dirty row stay
// in place for the next attempt.
func (s *syncService) Sync(ctx context.Context) (*SyncReport, error) {
	if _, err := restoreSession(ctx, s.client, s.repos); err != nil {
		return nil, err
	}
	prevAccess, prevRefresh := s.client.Tokens()

	out, err := s.collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("error collecting local changes: %w", err)
	}

	resp, err := s.client.Sync(ctx, &out.req)
	if serr := saveTokens(ctx, s.client, s.repos, prevAccess, prevRefresh); serr != nil {
		s.logger.Error(ctx, "failed to persist refreshed tokens", "error", serr)
	}
	if err != nil {
		return nil, fmt.Errorf("sync error: %w", err)
	}

	report := &SyncReport{Pushed: out.pushed, Watermark: resp.Timestamp}
	err = s.repos.InTx(ctx, func(ctx context.Context, tx *client.Repositories) error {
		return s.apply(ctx, tx, out, resp, report)
	})
	if err != nil {
		return nil, fmt.Errorf("error applying sync reply: %w", err)
	}

	s.logger.Info(ctx, "sync complete",
		"pushed", report.Pushed, "remapped", report.Remapped,
		"pulled", report.Pulled, "removed", report.Removed,
		"watermark", report.Watermark)
	return report, nil
}

func (s *syncService) apply(ctx context.Context, tx *client.Repositories, out *outbox, resp *protocol.SyncResponse, report *SyncReport) error {
	appts, notes := resp.Changes.Appointments, resp.Changes.GeneralNotes

	// remaps first, so the pulled copy of a just-created record lands on
	// the row that created it
	for _, m := range appts.Created {
		if _, ok := out.appointments[m.TempID.String()]; !ok {
			s.logger.Warn(ctx, "remap for unknown appointment", "temp_id", m.TempID.String())
			continue
		}
		if err := tx.Appointments.AssignServerID(ctx, m.TempID.String(), m.ServerID); err != nil {
			return err
		}
		report.Remapped++
	}
	for _, m := range notes.Created {
		if _, ok := out.notes[m.TempID.String()]; !ok {
			s.logger.Warn(ctx, "remap for unknown note", "temp_id", m.TempID.String())
			continue
		}
		if err := tx.Notes.AssignServerID(ctx, m.TempID.String(), m.ServerID); err != nil {
			return err
		}
		report.Remapped++
	}

	for id, a := range out.appointments {
		if a.ServerID == 0 {
			continue
		}
		var err error
		if a.Deleted {
			err = tx.Appointments.Purge(ctx, id)
		} else {
			err = tx.Appointments.ClearDirty(ctx, id)
		}
		if err != nil {
			return err
		}
	}
	for id, n := range out.notes {
		if n.ServerID == 0 {
			continue
		}
		var err error
		if n.Deleted {
			err = tx.Notes.Purge(ctx, id)
		} else {
			err = tx.Notes.ClearDirty(ctx, id)
		}
		if err != nil {
			return err
		}
	}

	for _, r := range appts.Updated {
		a := &models.Appointment{
			LocalID:           uuid.NewString(),
			ServerID:          r.ID,
			AppointmentFields: r.AppointmentFields,
			Owner:             r.User,
			ServerUpdatedAt:   r.ServerUpdatedAt,
		}
		if err := tx.Appointments.UpsertFromServer(ctx, a); err != nil {
			return err
		}
		report.Pulled++
	}
	for _, r := range notes.Updated {
		n := &models.Note{
			LocalID:         uuid.NewString(),
			ServerID:        r.ID,
			UserID:          r.UserID,
			NoteFields:      r.NoteFields,
			ServerUpdatedAt: r.ServerUpdatedAt,
		}
		if err := tx.Notes.UpsertFromServer(ctx, n); err != nil {
			return err
		}
		report.Pulled++
	}

	for _, id := range appts.Deleted {
		if err := tx.Appointments.DeleteByServerID(ctx, id); err != nil {
			return err
		}
		report.Removed++
	}
	for _, id := range notes.Deleted {
		if err := tx.Notes.DeleteByServerID(ctx, id); err != nil {
			return err
		}
		report.Removed++
	}

	return tx.Metadata.Set(ctx, models.MetaWatermark, resp.Timestamp)
}
