package models

import "github.com/dmitrijs2005/schedsync/internal/protocol"

// Appointment is the local copy of an appointment.
//
// LocalID is generated on this device and doubles as the temp id sent with
// a create. ServerID is zero until the server has assigned one. Dirty marks
// local edits not yet pushed; Deleted marks a pushed record removed locally.
type Appointment struct {
	LocalID  string
	ServerID int64
	protocol.AppointmentFields
	Owner           protocol.AccountSummary
	ServerUpdatedAt string
	Dirty           bool
	Deleted         bool
}
