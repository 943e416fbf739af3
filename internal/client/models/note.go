package models

import "github.com/dmitrijs2005/schedsync/internal/protocol"

// Note is the local copy of a general note. Field semantics follow
// Appointment.
type Note struct {
	LocalID  string
	ServerID int64
	UserID   int64
	protocol.NoteFields
	ServerUpdatedAt string
	Dirty           bool
	Deleted         bool
}
