package models

import "time"

// Appointment is a scheduled event. Every account can read every appointment;
// only the owner (UserID) may update or delete it.
type Appointment struct {
	ID              int64
	UserID          int64
	Title           string
	AppointmentDate string
	StartTime       *string
	DurationMinutes *int64
	Notes           *string
	RecurrenceType  *string

	// ServerUpdatedAt is stamped by the store on every insert and update.
	ServerUpdatedAt time.Time

	// Owner is filled by selects joined with users.
	Owner *Account
}
