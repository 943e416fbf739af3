// Package services contains the server-side business logic: the sync
// reconciler and session, authentication, account provisioning and backups.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/logging"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/dmitrijs2005/schedsync/internal/server/changeset"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/repomanager"
)

// Remaps lists the server ids assigned to client-created records.
type Remaps struct {
	Appointments []protocol.IDRemap
	Notes        []protocol.IDRemap
}

// Reconciler applies a client's change-set to the entity store and computes
// the outbound delta. Every store call is its own unit of work: nothing done
// by Apply is rolled back when a later operation fails.
type Reconciler struct {
	repos            repomanager.RepositoryManager
	log              logging.Logger
	propagateDeletes bool
}

func NewReconciler(repos repomanager.RepositoryManager, log logging.Logger, propagateDeletes bool) *Reconciler {
	return &Reconciler{repos: repos, log: log.With("module", "reconciler"), propagateDeletes: propagateDeletes}
}

// Apply runs creates, updates and deletes for appointments and then notes.
// A failed create is logged and left out of the remaps; any other store
// failure stops the batch and is returned.
func (r *Reconciler) Apply(ctx context.Context, accountID int64, b *changeset.Batch) (*Remaps, error) {
	remaps := &Remaps{
		Appointments: []protocol.IDRemap{},
		Notes:        []protocol.IDRemap{},
	}

	appointments := r.repos.Appointments()
	for _, c := range b.Appointments.Created {
		rec := c.Record
		rec.UserID = accountID
		id, err := appointments.Create(ctx, &rec)
		if err != nil {
			r.log.Warn(ctx, "appointment create skipped", "account_id", accountID, "temp_id", c.TempID.String(), "error", err)
			continue
		}
		remaps.Appointments = append(remaps.Appointments, protocol.IDRemap{TempID: c.TempID, ServerID: id})
	}
	for _, u := range b.Appointments.Updated {
		rec := u
		rec.UserID = accountID
		ok, err := appointments.Update(ctx, &rec)
		if err != nil {
			return nil, fmt.Errorf("updating appointment %d: %w", u.ID, err)
		}
		if !ok {
			r.log.Debug(ctx, "appointment update matched nothing", "account_id", accountID, "id", u.ID)
		}
	}
	for _, id := range b.Appointments.Deleted {
		ok, err := appointments.Delete(ctx, id, accountID)
		if err != nil {
			return nil, fmt.Errorf("deleting appointment %d: %w", id, err)
		}
		if err := r.recordDeletion(ctx, models.KindAppointment, id, ok); err != nil {
			return nil, err
		}
	}

	notes := r.repos.Notes()
	for _, c := range b.Notes.Created {
		rec := c.Record
		rec.UserID = accountID
		id, err := notes.Create(ctx, &rec)
		if err != nil {
			r.log.Warn(ctx, "note create skipped", "account_id", accountID, "temp_id", c.TempID.String(), "error", err)
			continue
		}
		remaps.Notes = append(remaps.Notes, protocol.IDRemap{TempID: c.TempID, ServerID: id})
	}
	for _, u := range b.Notes.Updated {
		rec := u
		if _, err := notes.Update(ctx, &rec); err != nil {
			return nil, fmt.Errorf("updating note %d: %w", u.ID, err)
		}
	}
	for _, id := range b.Notes.Deleted {
		ok, err := notes.Delete(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("deleting note %d: %w", id, err)
		}
		if err := r.recordDeletion(ctx, models.KindNote, id, ok); err != nil {
			return nil, err
		}
	}

	return remaps, nil
}

func (r *Reconciler) recordDeletion(ctx context.Context, kind string, id int64, deleted bool) error {
	if !r.propagateDeletes || !deleted {
		return nil
	}
	if err := r.repos.Tombstones().Record(ctx, kind, id); err != nil {
		return fmt.Errorf("recording %s tombstone %d: %w", kind, id, err)
	}
	return nil
}

// Pull returns every record of every account modified strictly after since.
// Created lists are left empty for the caller to fill with remaps.
func (r *Reconciler) Pull(ctx context.Context, since time.Time) (*protocol.Changes, error) {
	changes := &protocol.Changes{
		Appointments: protocol.NewDelta[protocol.AppointmentRecord](),
		GeneralNotes: protocol.NewDelta[protocol.NoteRecord](),
	}

	appointments, err := r.repos.Appointments().SelectUpdatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("selecting appointments: %w", err)
	}
	for _, a := range appointments {
		changes.Appointments.Updated = append(changes.Appointments.Updated, appointmentRecord(a))
	}

	notes, err := r.repos.Notes().SelectUpdatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("selecting notes: %w", err)
	}
	for _, n := range notes {
		changes.GeneralNotes.Updated = append(changes.GeneralNotes.Updated, noteRecord(n))
	}

	if r.propagateDeletes {
		tombs := r.repos.Tombstones()
		if changes.Appointments.Deleted, err = tombs.SelectSince(ctx, models.KindAppointment, since); err != nil {
			return nil, fmt.Errorf("selecting appointment tombstones: %w", err)
		}
		if changes.GeneralNotes.Deleted, err = tombs.SelectSince(ctx, models.KindNote, since); err != nil {
			return nil, fmt.Errorf("selecting note tombstones: %w", err)
		}
	}

	return changes, nil
}
