package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/logging"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/dmitrijs2005/schedsync/internal/server/changeset"
)

// SyncService handles one sync call: parse, apply, pull, reply.
type SyncService struct {
	reconciler *Reconciler
	log        logging.Logger
	now        func() time.Time
}

func NewSyncService(reconciler *Reconciler, log logging.Logger) *SyncService {
	return &SyncService{reconciler: reconciler, log: log.With("module", "sync"), now: time.Now}
}

// Sync runs a sync call for accountID with the raw request body.
//
// A malformed envelope is reported as common.ErrorValidation before the store
// is touched. The reply timestamp is taken after the apply phase and before
// the pull, at second precision, so a write committed during the pull is
// delivered again on the next call rather than lost.
func (s *SyncService) Sync(ctx context.Context, accountID int64, body []byte) (*protocol.SyncResponse, error) {
	batch, err := changeset.Parse(body)
	if err != nil {
		return nil, err
	}
	for _, sk := range batch.Skipped {
		s.log.Debug(ctx, "change skipped", "account_id", accountID, "kind", sk.Kind, "list", sk.List, "index", sk.Index, "error", sk.Err)
	}

	remaps, err := s.reconciler.Apply(ctx, accountID, batch)
	if err != nil {
		s.log.Error(ctx, "sync apply failed", "account_id", accountID, "error", err)
		return nil, err
	}

	stamp := s.now().UTC().Truncate(time.Second)

	changes, err := s.reconciler.Pull(ctx, batch.Watermark)
	if err != nil {
		s.log.Error(ctx, "sync pull failed", "account_id", accountID, "error", err)
		return nil, err
	}
	changes.Appointments.Created = remaps.Appointments
	changes.GeneralNotes.Created = remaps.Notes

	resp := protocol.NewSyncResponse(protocol.FormatTimestamp(stamp))
	resp.Changes = *changes

	s.log.Info(ctx, "sync applied",
		"account_id", accountID,
		"watermark", protocol.FormatTimestamp(batch.Watermark),
		"pushed", batch.Appointments.Len()+batch.Notes.Len(),
		"skipped", len(batch.Skipped),
		"remapped", len(remaps.Appointments)+len(remaps.Notes),
		"pulled_appointments", len(changes.Appointments.Updated),
		"pulled_notes", len(changes.GeneralNotes.Updated),
	)
	return resp, nil
}
